package video

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplitSentencesKeepsTrailingPunctuation(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"Alpha. Bravo!", []string{"Alpha.", "Bravo!"}},
		{"今天天气不错。明天会下雨？", []string{"今天天气不错。", "明天会下雨？"}},
		{"前半句，后半句。", []string{"前半句。", "后半句。"}},
		{"no punctuation at all", []string{"no punctuation at all"}},
		{"version 4.5 shipped. done!", []string{"version 4.5 shipped.", "done!"}},
		{"trailing tail. rest", []string{"trailing tail.", "rest"}},
	}

	for _, tc := range cases {
		got := SplitSentences(tc.input)
		if len(got) != len(tc.want) {
			t.Fatalf("SplitSentences(%q) = %v, want %v", tc.input, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("SplitSentences(%q)[%d] = %q, want %q", tc.input, i, got[i], tc.want[i])
			}
		}
	}
}

func TestComputeTimingsWeighsRawSpansEvenly(t *testing.T) {
	// both spans cover 6 raw characters: "Alpha." and " Beta!"
	lines := ComputeTimings("Alpha. Beta!", 10)

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "Alpha." || lines[1].Text != "Beta!" {
		t.Fatalf("captions must be trimmed: %+v", lines)
	}
	if lines[0].Start != 0 || math.Abs(lines[0].End-5) > 1e-9 {
		t.Fatalf("first line timing wrong: %+v", lines[0])
	}
	if math.Abs(lines[1].Start-5) > 1e-9 || lines[1].End != 10 {
		t.Fatalf("second line timing wrong: %+v", lines[1])
	}
}

func TestComputeTimingsProportionalAndContiguous(t *testing.T) {
	sentences := []string{"短句。", "这是一个比较长的句子。", "中等长度句。"}
	total := 12.0

	lines := ComputeTimings(strings.Join(sentences, ""), total)

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	// contiguous, starting at zero
	if lines[0].Start != 0 {
		t.Fatalf("first line must start at 0, got %f", lines[0].Start)
	}
	for i := 1; i < len(lines); i++ {
		if math.Abs(lines[i].Start-lines[i-1].End) > 1e-9 {
			t.Fatalf("gap between line %d and %d: %f vs %f", i-1, i, lines[i-1].End, lines[i].Start)
		}
	}

	// durations sum exactly to the audio duration
	if lines[len(lines)-1].End != total {
		t.Fatalf("last line must end at %f, got %f", total, lines[len(lines)-1].End)
	}

	// proportional to character length
	totalChars := 0
	for _, s := range sentences {
		totalChars += len([]rune(s))
	}
	for i, line := range lines[:len(lines)-1] {
		want := total * float64(len([]rune(sentences[i]))) / float64(totalChars)
		if math.Abs((line.End-line.Start)-want) > 1e-9 {
			t.Fatalf("line %d duration %f, want %f", i, line.End-line.Start, want)
		}
	}
}

func TestComputeTimingsEmptyInput(t *testing.T) {
	if lines := ComputeTimings("", 10); lines != nil {
		t.Fatalf("expected nil for empty text, got %v", lines)
	}
	if lines := ComputeTimings("x", 0); lines != nil {
		t.Fatalf("expected nil for zero duration, got %v", lines)
	}
}

func TestWriteSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.srt")
	lines := []SubtitleLine{
		{Text: "第一句。", Start: 0, End: 2.5},
		{Text: "第二句。", Start: 2.5, End: 6},
	}

	if err := WriteSRT(lines, path); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "00:00:00,000 --> 00:00:02,500") {
		t.Fatalf("missing first timing line:\n%s", content)
	}
	if !strings.Contains(content, "00:00:02,500 --> 00:00:06,000") {
		t.Fatalf("missing second timing line:\n%s", content)
	}
	if !strings.Contains(content, "第一句。") || !strings.Contains(content, "第二句。") {
		t.Fatalf("missing caption text:\n%s", content)
	}
}
