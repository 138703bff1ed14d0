package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"newsreel/config"
	"newsreel/types"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Assembler concatenates an article's rendered segments into one artifact
// under a per-run, per-category, per-article directory. Every transient
// file is removed on both the success and failure exit paths; across many
// sequential articles the leaked-handle risk is the thing this guards.
type Assembler struct {
	synth     *Synthesizer
	outputDir string
	concat    func(clipPaths []string, outputPath string) error
	now       func() time.Time
}

// NewAssembler builds an assembler writing under outputDir.
func NewAssembler(synth *Synthesizer, outputDir string) *Assembler {
	return &Assembler{
		synth:     synth,
		outputDir: outputDir,
		concat:    concatClips,
		now:       time.Now,
	}
}

// ArtifactDir returns the directory for one article's artifact:
// outputDir/<run-date>/<category>/<index>_<token>.
func (a *Assembler) ArtifactDir(category string, index int, token string) string {
	return filepath.Join(a.outputDir, a.now().Format("2006-01-02"), category, fmt.Sprintf("%02d_%s", index, token))
}

// Render synthesizes every segment in order and concatenates them into one
// video file for the article. The returned artifact is never mutated after
// write; later runs supersede it under a fresh token.
func (a *Assembler) Render(ctx context.Context, article types.Article, segments []types.NarrationSegment, index int) (types.VideoArtifact, error) {
	category := article.Category
	if category == "" {
		category = config.DefaultCategory
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	dir := a.ArtifactDir(category, index, token)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.VideoArtifact{}, fmt.Errorf("create artifact dir: %w", err)
	}

	finalPath := filepath.Join(dir, fmt.Sprintf("%s_%s.mp4", category, token))

	var transients []string
	succeeded := false
	defer func() {
		for _, path := range transients {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Printf("[video] cleanup failed for %s: %v", path, err)
			}
		}
		if !succeeded {
			// a partial artifact must not survive a failed run
			_ = os.Remove(finalPath)
		}
	}()

	clipPaths := make([]string, 0, len(segments))
	total := 0.0
	for i, segment := range segments {
		clipPath, duration, err := a.synth.RenderSegment(ctx, segment, dir, i)
		transients = append(transients,
			filepath.Join(dir, fmt.Sprintf("cover_%d.jpg", i)),
			filepath.Join(dir, fmt.Sprintf("voice_%d.mp3", i)),
			filepath.Join(dir, fmt.Sprintf("subs_%d.srt", i)),
		)
		if err != nil {
			return types.VideoArtifact{}, fmt.Errorf("segment %d: %w", i, err)
		}
		transients = append(transients, clipPath)
		clipPaths = append(clipPaths, clipPath)
		total += duration
	}

	if len(clipPaths) == 1 {
		if err := os.Rename(clipPaths[0], finalPath); err != nil {
			return types.VideoArtifact{}, fmt.Errorf("finalize artifact: %w", err)
		}
	} else {
		if err := a.concat(clipPaths, finalPath); err != nil {
			return types.VideoArtifact{}, fmt.Errorf("concatenate segments: %w", err)
		}
	}

	succeeded = true
	return types.VideoArtifact{
		ArticleURL: article.URL,
		Title:      article.Title,
		Category:   category,
		Path:       finalPath,
		Duration:   total,
	}, nil
}

// concatClips joins the ordered clip files losslessly via the concat demuxer.
func concatClips(clipPaths []string, outputPath string) error {
	listPath := outputPath + ".txt"
	var list strings.Builder
	for _, clip := range clipPaths {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return fmt.Errorf("resolve clip path: %w", err)
		}
		fmt.Fprintf(&list, "file '%s'\n", filepath.ToSlash(abs))
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	err := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(outputPath, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().
		Run()
	if err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w", err)
	}
	return nil
}
