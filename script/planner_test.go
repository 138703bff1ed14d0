package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"newsreel/types"
)

type fakeGenerator struct {
	segments []types.NarrationSegment
	err      error
	called   bool
}

func (f *fakeGenerator) SegmentScript(ctx context.Context, title, description string) ([]types.NarrationSegment, error) {
	f.called = true
	return f.segments, f.err
}

func TestPlanExistingSummaryBecomesSingleSegment(t *testing.T) {
	gen := &fakeGenerator{}
	p := NewPlanner(gen, 0)

	article := types.Article{
		Title:     "标题",
		AISummary: "已有的口播摘要",
		ImageURL:  "https://img.example/cover.jpg",
	}

	segments := p.Plan(context.Background(), article)

	if gen.called {
		t.Fatal("generator must not be consulted when a summary exists")
	}
	if len(segments) != 1 {
		t.Fatalf("expected exactly one segment, got %d", len(segments))
	}
	if segments[0].Text != "已有的口播摘要" {
		t.Fatalf("unexpected segment text %q", segments[0].Text)
	}
	if segments[0].ImageURL != article.ImageURL {
		t.Fatalf("segment should carry the article image, got %q", segments[0].ImageURL)
	}
	if segments[0].DurationHint <= 0 {
		t.Fatal("segment needs a positive duration hint")
	}
}

func TestPlanUsesStructuredScript(t *testing.T) {
	gen := &fakeGenerator{segments: []types.NarrationSegment{
		{Text: "第一段", DurationHint: 8},
		{Text: "第二段", ImageURL: "https://img.example/own.jpg", DurationHint: 12},
	}}
	p := NewPlanner(gen, 0)

	article := types.Article{Title: "T", Description: "D", ImageURL: "https://img.example/article.jpg"}
	segments := p.Plan(context.Background(), article)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].ImageURL != article.ImageURL {
		t.Fatalf("segment without image should inherit the article image, got %q", segments[0].ImageURL)
	}
	if segments[1].ImageURL != "https://img.example/own.jpg" {
		t.Fatalf("segment image should be preserved, got %q", segments[1].ImageURL)
	}
}

func TestPlanFallsBackToTitleAndDescription(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	p := NewPlanner(gen, 10)

	article := types.Article{
		Title:       "标题",
		Description: "这是一条很长很长很长很长的描述内容",
	}

	segments := p.Plan(context.Background(), article)

	if len(segments) != 1 {
		t.Fatalf("fallback must yield exactly one segment, got %d", len(segments))
	}
	text := segments[0].Text
	if !strings.HasPrefix(text, "标题。") {
		t.Fatalf("fallback text should start with the title, got %q", text)
	}
	if !strings.HasSuffix(text, "...") {
		t.Fatalf("truncated description should end with ellipsis, got %q", text)
	}
	wantDesc := string([]rune("这是一条很长很长很长很长的描述内容")[:10])
	if !strings.Contains(text, wantDesc) {
		t.Fatalf("fallback should contain the truncated description, got %q", text)
	}
}

func TestPlanNeverReturnsZeroSegments(t *testing.T) {
	p := NewPlanner(nil, 0)
	segments := p.Plan(context.Background(), types.Article{Title: "只有标题"})
	if len(segments) != 1 {
		t.Fatalf("expected the title-only fallback segment, got %d", len(segments))
	}
	if segments[0].Text != "只有标题" {
		t.Fatalf("unexpected fallback text %q", segments[0].Text)
	}
}
