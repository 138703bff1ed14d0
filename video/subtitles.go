package video

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SubtitleLine is one timed caption. Lines for a segment are contiguous:
// each starts exactly where the previous one ended.
type SubtitleLine struct {
	Text  string
	Start float64
	End   float64
}

// sentenceSpan pairs a caption's display text with the raw length of the
// span it was split from. The weight keeps the whitespace consumed by the
// split so timing shares cover the whole narration.
type sentenceSpan struct {
	text   string
	weight int
}

// SplitSentences breaks narration text into sentences, each keeping its
// trailing punctuation mark. The Chinese comma is promoted to a sentence
// break so long clauses get their own caption. Periods between digits
// (4.5, 2.3.4) are not breaks.
func SplitSentences(text string) []string {
	spans := splitSpans(text)
	sentences := make([]string, len(spans))
	for i, span := range spans {
		sentences[i] = span.text
	}
	return sentences
}

func splitSpans(text string) []sentenceSpan {
	text = strings.ReplaceAll(text, "，", "。")

	var spans []sentenceSpan
	runes := []rune(text)
	start := 0

	for i, r := range runes {
		if !isSentenceEnd(r) {
			continue
		}
		if r == '.' && i > 0 && i < len(runes)-1 && isDigit(runes[i-1]) && isDigit(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" && s != string(r) {
			spans = append(spans, sentenceSpan{text: s, weight: i + 1 - start})
		}
		start = i + 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		spans = append(spans, sentenceSpan{text: s, weight: len(runes) - start})
	}

	if len(spans) == 0 {
		if s := strings.TrimSpace(text); s != "" {
			spans = []sentenceSpan{{text: s, weight: len(runes)}}
		}
	}
	return spans
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '。', '！', '？', '.', '!', '?':
		return true
	}
	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// ComputeTimings splits the narration and allocates the segment's audio
// duration across the sentences proportionally to each one's raw span
// length, whitespace included, so "Alpha. Beta!" at 10s times out 5s/5s.
// Lines are placed back-to-back from 0 with no gaps; the last line absorbs
// rounding so the end times sum exactly to totalDuration.
func ComputeTimings(text string, totalDuration float64) []SubtitleLine {
	spans := splitSpans(text)
	if len(spans) == 0 || totalDuration <= 0 {
		return nil
	}

	totalWeight := 0
	for _, span := range spans {
		totalWeight += span.weight
	}
	if totalWeight == 0 {
		return nil
	}

	lines := make([]SubtitleLine, len(spans))
	start := 0.0
	for i, span := range spans {
		end := start + totalDuration*float64(span.weight)/float64(totalWeight)
		if i == len(spans)-1 {
			end = totalDuration
		}
		lines[i] = SubtitleLine{Text: span.text, Start: start, End: end}
		start = end
	}
	return lines
}

// WriteSRT emits the timed lines as an SRT file.
func WriteSRT(lines []SubtitleLine, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	for i, line := range lines {
		fmt.Fprintf(file, "%d\n", i+1)
		fmt.Fprintf(file, "%s --> %s\n", formatTimestamp(line.Start), formatTimestamp(line.End))
		fmt.Fprintf(file, "%s\n\n", line.Text)
	}
	return nil
}

func formatTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// subtitleStyle is the force_style block applied to the SRT overlay.
func subtitleStyle() string {
	return "FontName=Noto Sans CJK SC," +
		"FontSize=14," +
		"PrimaryColour=&HFFFFFF," +
		"OutlineColour=&H000000," +
		"BorderStyle=3," +
		"Outline=2," +
		"Shadow=0," +
		"Alignment=2," +
		"Bold=1"
}

func escapeSubtitlePath(srtPath string) string {
	escaped := filepath.ToSlash(srtPath)
	return strings.ReplaceAll(escaped, ":", "\\:")
}
