package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"newsreel/types"
)

type fakeSpeech struct {
	err error
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text, outputPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("audio"), 0o644)
}

type fakeImages struct{}

func (f *fakeImages) Fetch(ctx context.Context, imageURL, destPath string) string {
	if err := os.WriteFile(destPath, []byte("jpeg"), 0o644); err != nil {
		return "default_cover.jpg"
	}
	return destPath
}

func newTestSynthesizer(speech SpeechSynthesizer) *Synthesizer {
	s := NewSynthesizer(speech, &fakeImages{}, func(string) (float64, error) { return 4.0, nil })
	s.compose = func(imagePath, audioPath, srtPath, outputPath string, duration float64) error {
		return os.WriteFile(outputPath, []byte("clip"), 0o644)
	}
	return s
}

func newTestAssembler(t *testing.T, speech SpeechSynthesizer) *Assembler {
	t.Helper()
	a := NewAssembler(newTestSynthesizer(speech), t.TempDir())
	a.concat = func(clipPaths []string, outputPath string) error {
		return os.WriteFile(outputPath, []byte("final"), 0o644)
	}
	a.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return a
}

func TestRenderProducesArtifactAndCleansTransients(t *testing.T) {
	a := newTestAssembler(t, &fakeSpeech{})

	article := types.Article{URL: "https://n.example/1", Title: "T", Category: "科技"}
	segments := []types.NarrationSegment{
		{Text: "第一段。"},
		{Text: "第二段。"},
	}

	artifact, err := a.Render(context.Background(), article, segments, 0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if artifact.Category != "科技" {
		t.Fatalf("unexpected category %q", artifact.Category)
	}
	if artifact.Duration != 8.0 {
		t.Fatalf("expected summed duration 8.0, got %f", artifact.Duration)
	}
	if !strings.Contains(artifact.Path, filepath.Join("2026-03-14", "科技")) {
		t.Fatalf("artifact path missing run-date/category layout: %s", artifact.Path)
	}
	if _, err := os.Stat(artifact.Path); err != nil {
		t.Fatalf("artifact file missing: %v", err)
	}

	// only the final artifact may remain in its directory
	entries, err := os.ReadDir(filepath.Dir(artifact.Path))
	if err != nil {
		t.Fatalf("read artifact dir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("transient files survived: %v", names)
	}
}

func TestRenderFailureCleansUpAndReportsError(t *testing.T) {
	a := newTestAssembler(t, &fakeSpeech{err: errors.New("tts down")})

	article := types.Article{URL: "https://n.example/2", Title: "T"}
	_, err := a.Render(context.Background(), article, []types.NarrationSegment{{Text: "一段。"}}, 1)
	if err == nil {
		t.Fatal("expected error when speech synthesis fails")
	}

	// the per-article directory must contain no leftover files
	base := a.ArtifactDir("其他", 1, "")
	parent := filepath.Dir(base)
	dirs, err := os.ReadDir(parent)
	if err != nil {
		t.Fatalf("read category dir: %v", err)
	}
	for _, d := range dirs {
		entries, err := os.ReadDir(filepath.Join(parent, d.Name()))
		if err != nil {
			t.Fatalf("read artifact dir: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("failed render left files behind in %s", d.Name())
		}
	}
}

func TestRenderDefaultsEmptyCategory(t *testing.T) {
	a := newTestAssembler(t, &fakeSpeech{})

	artifact, err := a.Render(context.Background(), types.Article{URL: "u", Title: "T"},
		[]types.NarrationSegment{{Text: "内容。"}}, 2)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if artifact.Category != "其他" {
		t.Fatalf("empty category must default, got %q", artifact.Category)
	}
}
