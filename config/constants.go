package config

import "time"

// Enrichment Constants
const (
	// MaxConcurrentAICalls limits in-flight calls to the AI service
	MaxConcurrentAICalls = 3

	// EnrichmentBatchSize is the number of tasks issued per batch
	EnrichmentBatchSize = 6

	// EnrichmentCooldown is the wait time between enrichment batches
	EnrichmentCooldown = 5 * time.Second

	// DefaultCategory is assigned when classification fails or returns
	// a label outside the known set
	DefaultCategory = "其他"

	// MaxSummaryChars caps the narration summary length requested from the AI
	MaxSummaryChars = 60

	// MaxSummaryBackfill bounds how many stored articles with failed
	// summaries get retried per run
	MaxSummaryBackfill = 10
)

// Video Output Constants
const (
	// VideoWidth is the output video width (9:16 aspect ratio)
	VideoWidth = 720

	// VideoHeight is the output video height (9:16 aspect ratio)
	VideoHeight = 1280

	// VideoFPS is the output frame rate
	VideoFPS = 24

	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// AudioCodec is the audio encoding codec
	AudioCodec = "aac"

	// AudioBitrate is the audio quality bitrate
	AudioBitrate = "192k"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "fast"
)

// Synthesis Constants
const (
	// MaxVideosPerRun bounds how many articles get a video each run
	MaxVideosPerRun = 5

	// SegmentDurationHint is the advisory duration for single-summary segments
	SegmentDurationHint = 30.0

	// MaxFallbackDescriptionChars truncates the description when the
	// planner falls back to title + description narration
	MaxFallbackDescriptionChars = 80
)

// Directory Constants
const (
	// OutputDir is the base directory for generated videos
	OutputDir = "videos"

	// DefaultCoverPath is the shared cover used when image acquisition fails
	DefaultCoverPath = "assets/default_cover.jpg"
)
