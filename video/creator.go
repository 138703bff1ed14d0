package video

import (
	"context"
	"fmt"
	"path/filepath"

	"newsreel/config"
	"newsreel/types"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// SpeechSynthesizer produces a narration audio file for a piece of text.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// ImageResolver downloads a cover image, falling back to the shared default.
type ImageResolver interface {
	Fetch(ctx context.Context, imageURL, destPath string) string
}

// Synthesizer renders one narration segment into a timed audiovisual clip:
// resolved cover image, synthesized voiceover, and proportionally timed
// subtitles composed into a vertical video segment.
type Synthesizer struct {
	speech SpeechSynthesizer
	images ImageResolver

	// probe returns the actual duration of a synthesized audio file.
	probe func(path string) (float64, error)
	// compose builds the final clip from its parts.
	compose func(imagePath, audioPath, srtPath, outputPath string, duration float64) error
}

// NewSynthesizer wires the collaborators. probe defaults to ffprobe and
// compose to the ffmpeg graph; tests may override both.
func NewSynthesizer(speech SpeechSynthesizer, images ImageResolver, probe func(string) (float64, error)) *Synthesizer {
	return &Synthesizer{
		speech:  speech,
		images:  images,
		probe:   probe,
		compose: composeClip,
	}
}

// RenderSegment produces one clip file under workDir and returns its path
// and authoritative duration. Intermediate files (cover, audio, SRT) are
// created under workDir and left for the caller's cleanup pass.
func (s *Synthesizer) RenderSegment(ctx context.Context, segment types.NarrationSegment, workDir string, index int) (string, float64, error) {
	imagePath := s.images.Fetch(ctx, segment.ImageURL, filepath.Join(workDir, fmt.Sprintf("cover_%d.jpg", index)))

	audioPath := filepath.Join(workDir, fmt.Sprintf("voice_%d.mp3", index))
	if err := s.speech.Synthesize(ctx, segment.Text, audioPath); err != nil {
		return "", 0, fmt.Errorf("synthesize narration: %w", err)
	}

	duration, err := s.probe(audioPath)
	if err != nil {
		return "", 0, fmt.Errorf("probe narration: %w", err)
	}

	lines := ComputeTimings(segment.Text, duration)
	srtPath := filepath.Join(workDir, fmt.Sprintf("subs_%d.srt", index))
	if err := WriteSRT(lines, srtPath); err != nil {
		return "", 0, fmt.Errorf("write subtitles: %w", err)
	}

	clipPath := filepath.Join(workDir, fmt.Sprintf("segment_%d.mp4", index))
	if err := s.compose(imagePath, audioPath, srtPath, clipPath, duration); err != nil {
		return "", 0, fmt.Errorf("compose clip: %w", err)
	}
	return clipPath, duration, nil
}

// composeClip overlays the timed subtitles on a slowly zooming still image
// and attaches the narration track.
func composeClip(imagePath, audioPath, srtPath, outputPath string, duration float64) error {
	frames := int(duration*config.VideoFPS) + 1

	image := ffmpeg.Input(imagePath, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": config.VideoFPS,
		"t":         fmt.Sprintf("%.2f", duration),
	})
	audio := ffmpeg.Input(audioPath)

	// Scale to fill the 9:16 frame, center-crop the overflow, then apply a
	// slow push-in so the still image does not read as frozen.
	visual := ffmpeg.Filter(
		[]*ffmpeg.Stream{image},
		"scale",
		ffmpeg.Args{fmt.Sprintf("%d:%d", config.VideoWidth, config.VideoHeight)},
		ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"},
	).Filter(
		"crop",
		ffmpeg.Args{fmt.Sprintf("%d:%d", config.VideoWidth, config.VideoHeight)},
	).Filter(
		"zoompan",
		ffmpeg.Args{},
		ffmpeg.KwArgs{
			"z":   "min(zoom+0.0008,1.12)",
			"d":   frames,
			"s":   fmt.Sprintf("%dx%d", config.VideoWidth, config.VideoHeight),
			"fps": config.VideoFPS,
		},
	).Filter(
		"subtitles",
		ffmpeg.Args{escapeSubtitlePath(srtPath)},
		ffmpeg.KwArgs{"force_style": subtitleStyle()},
	)

	err := ffmpeg.Output([]*ffmpeg.Stream{visual, audio}, outputPath, ffmpeg.KwArgs{
		"c:v":      config.VideoCodec,
		"c:a":      config.AudioCodec,
		"b:a":      config.AudioBitrate,
		"preset":   config.VideoPreset,
		"pix_fmt":  "yuv420p",
		"r":        config.VideoFPS,
		"shortest": "",
	}).OverWriteOutput().Run()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}
