package publish

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"newsreel/types"
)

// YouTubePublisher uploads finished artifacts as Shorts using a service
// account credential file.
type YouTubePublisher struct {
	service *youtube.Service
}

func NewYouTubePublisher(ctx context.Context, serviceAccountFile string) (*YouTubePublisher, error) {
	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}

	service, err := youtube.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &YouTubePublisher{service: service}, nil
}

func (p *YouTubePublisher) Publish(ctx context.Context, artifact types.VideoArtifact) error {
	file, err := os.Open(artifact.Path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}
	log.Printf("[publish] uploading %s (%.2f MB)", artifact.Path, float64(info.Size())/(1024*1024))

	video := &youtube.Video{
		Snippet: videoSnippet(artifact),
		Status: &youtube.VideoStatus{
			PrivacyStatus:           "public",
			SelfDeclaredMadeForKids: false,
		},
	}

	call := p.service.Videos.Insert([]string{"snippet", "status"}, video).Media(file)
	response, err := call.Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("upload video: %w", err)
	}

	log.Printf("[publish] uploaded https://youtube.com/shorts/%s", response.Id)
	return nil
}

// videoSnippet builds title, description and tags from the artifact.
// YouTube caps titles at 100 characters.
func videoSnippet(artifact types.VideoArtifact) *youtube.VideoSnippet {
	title := artifact.Title
	if len([]rune(title)) > 100 {
		runes := []rune(title)
		title = string(runes[:97]) + "..."
	}

	description := fmt.Sprintf("%s\n\n来源: %s\n\n#新闻 #资讯 #shorts", artifact.Title, artifact.ArticleURL)

	return &youtube.VideoSnippet{
		Title:       title,
		Description: description,
		Tags:        []string{"新闻", "资讯", artifact.Category, "shorts"},
		CategoryId:  "25",
	}
}
