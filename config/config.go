package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "NEWSREEL_CONFIG"
	newsAPIKeyEnv  = "NEWS_API_KEY"
	supabaseURLEnv = "SUPABASE_URL"
	supabaseKeyEnv = "SUPABASE_KEY"
	cohereKeyEnv   = "COHERE_API_KEY"
	barkKeyEnv     = "BARK_KEY"
	ttsEndpointEnv = "TTS_ENDPOINT"
	redisAddrEnv   = "REDIS_ADDR"
	s3BucketEnv    = "S3_BUCKET"
	kafkaBrokerEnv = "KAFKA_BOOTSTRAP_SERVERS"
)

// Config holds the settings required across the pipeline.
type Config struct {
	News     NewsConfig     `yaml:"news"`
	Store    StoreConfig    `yaml:"store"`
	AI       AIConfig       `yaml:"ai"`
	TTS      TTSConfig      `yaml:"tts"`
	Notify   NotifyConfig   `yaml:"notify"`
	Cache    CacheConfig    `yaml:"cache"`
	Publish  PublishConfig  `yaml:"publish"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// NewsConfig describes the upstream news sources.
type NewsConfig struct {
	APIKey   string   `yaml:"apiKey"`
	Endpoint string   `yaml:"endpoint"`
	Language string   `yaml:"language"`
	PageSize int      `yaml:"pageSize"`
	Category string   `yaml:"category"`
	Keyword  string   `yaml:"keyword"`
	RSSFeeds []string `yaml:"rssFeeds"`
}

// StoreConfig wires the Supabase content store.
type StoreConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Table string `yaml:"table"`
}

// AIConfig defines how to contact the classification/summarization service.
type AIConfig struct {
	APIKey      string        `yaml:"apiKey"`
	Model       string        `yaml:"model"`
	Concurrency int           `yaml:"concurrency"`
	BatchSize   int           `yaml:"batchSize"`
	Cooldown    time.Duration `yaml:"cooldown"`
}

// TTSConfig defines the speech-synthesis service endpoint and voice.
type TTSConfig struct {
	Endpoint string `yaml:"endpoint"`
	Voice    string `yaml:"voice"`
}

// NotifyConfig holds the Bark push key.
type NotifyConfig struct {
	BarkKey string `yaml:"barkKey"`
}

// CacheConfig wires the optional Redis seen-URL cache.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB"`
	TTL           time.Duration `yaml:"ttl"`
}

// PublishConfig controls optional uploads of finished artifacts.
type PublishConfig struct {
	S3Bucket           string `yaml:"s3Bucket"`
	S3Region           string `yaml:"s3Region"`
	S3Prefix           string `yaml:"s3Prefix"`
	YouTubeCredentials string `yaml:"youtubeCredentials"`
}

// KafkaConfig describes the optional consumer mode.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"groupId"`
}

// PipelineConfig bounds the run.
type PipelineConfig struct {
	MaxVideos    int    `yaml:"maxVideos"`
	OutputDir    string `yaml:"outputDir"`
	DefaultCover string `yaml:"defaultCover"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv(supabaseURLEnv); v != "" {
		c.Store.URL = v
	}
	if v := os.Getenv(supabaseKeyEnv); v != "" {
		c.Store.Key = v
	}
	if v := os.Getenv(cohereKeyEnv); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv(barkKeyEnv); v != "" {
		c.Notify.BarkKey = v
	}
	if v := os.Getenv(ttsEndpointEnv); v != "" {
		c.TTS.Endpoint = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(s3BucketEnv); v != "" {
		c.Publish.S3Bucket = v
	}
	if v := os.Getenv(kafkaBrokerEnv); v != "" {
		c.Kafka.Brokers = []string{v}
	}
	if v := os.Getenv("NEWS_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.News.PageSize = n
		}
	}
}

func defaultConfig() Config {
	return Config{
		News: NewsConfig{
			Endpoint: "https://newsapi.org/v2/top-headlines",
			Language: "zh",
			PageSize: 50,
		},
		Store: StoreConfig{Table: "news"},
		AI: AIConfig{
			Model:       "command-r",
			Concurrency: MaxConcurrentAICalls,
			BatchSize:   EnrichmentBatchSize,
			Cooldown:    EnrichmentCooldown,
		},
		TTS: TTSConfig{Voice: "zh-CN-XiaoxiaoNeural"},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Topic:   "newsreel-articles",
			GroupID: "newsreel-consumer-group",
		},
		Pipeline: PipelineConfig{
			MaxVideos:    MaxVideosPerRun,
			OutputDir:    OutputDir,
			DefaultCover: DefaultCoverPath,
		},
	}
}
