package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"newsreel/api"
	"newsreel/cache"
	"newsreel/config"
	"newsreel/enrich"
	"newsreel/feed"
	"newsreel/media"
	"newsreel/notify"
	"newsreel/pipeline"
	"newsreel/publish"
	"newsreel/queue"
	"newsreel/script"
	"newsreel/store"
	"newsreel/tts"
	"newsreel/video"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	batch := flag.Bool("batch", false, "run one batch and exit (default mode)")
	serve := flag.Bool("serve", false, "run the HTTP API server")
	kafka := flag.Bool("kafka", false, "consume article events from Kafka")
	cronSpec := flag.String("cron", "", "cron expression for scheduled batch runs, e.g. \"0 8 * * *\"")
	flag.Parse()

	cfg := config.Load()

	app, err := buildApp(cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.close()

	switch {
	case *serve:
		runServer(app)
	case *kafka:
		runConsumer(cfg, app)
	case *cronSpec != "":
		runScheduled(*cronSpec, app)
	case *batch:
		fallthrough
	default:
		if _, err := app.pipeline.Run(context.Background()); err != nil {
			log.Fatalf("run failed: %v", err)
		}
	}
}

// app bundles the constructed collaborators for the selected mode.
type app struct {
	pipeline *pipeline.Pipeline
	planner  *script.Planner
	renderer *video.Assembler
	seen     *cache.SeenURLs
}

func (a *app) close() {
	if a.seen != nil {
		if err := a.seen.Close(); err != nil {
			log.Printf("closing seen cache: %v", err)
		}
	}
}

func buildApp(cfg config.Config) (*app, error) {
	supa, err := store.New(store.Config{
		URL:   cfg.Store.URL,
		Key:   cfg.Store.Key,
		Table: cfg.Store.Table,
	})
	if err != nil {
		return nil, err
	}

	ai, err := enrich.NewCohereClient(cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		return nil, err
	}
	scheduler := enrich.NewScheduler(ai, enrich.SchedulerConfig{
		Concurrency: cfg.AI.Concurrency,
		BatchSize:   cfg.AI.BatchSize,
		Cooldown:    cfg.AI.Cooldown,
	})

	sources := []pipeline.Source{feed.NewNewsAPIClient(feed.NewsAPIOptions{
		Endpoint: cfg.News.Endpoint,
		APIKey:   cfg.News.APIKey,
		Language: cfg.News.Language,
		PageSize: cfg.News.PageSize,
		Category: cfg.News.Category,
		Keyword:  cfg.News.Keyword,
	})}
	if len(cfg.News.RSSFeeds) > 0 {
		sources = append(sources, feed.NewRSSSource(cfg.News.RSSFeeds, cfg.News.Language))
	}

	planner := script.NewPlanner(ai, config.MaxFallbackDescriptionChars)
	speech := tts.NewClient(cfg.TTS.Endpoint, cfg.TTS.Voice)
	images := media.NewImageFetcher(cfg.Pipeline.DefaultCover)
	synth := video.NewSynthesizer(speech, images, media.AudioDuration)
	assembler := video.NewAssembler(synth, cfg.Pipeline.OutputDir)

	seen := cache.NewSeenURLs(cache.Config{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
		TTL:      cfg.Cache.TTL,
	})

	p := &pipeline.Pipeline{
		Sources:       sources,
		Store:         supa,
		Enricher:      scheduler,
		Planner:       planner,
		Renderer:      assembler,
		Notifier:      notify.NewBark(cfg.Notify.BarkKey),
		MaxVideos:     cfg.Pipeline.MaxVideos,
		BackfillLimit: config.MaxSummaryBackfill,
	}
	if seen != nil {
		p.Seen = seen
	}

	ctx := context.Background()
	if cfg.Publish.S3Bucket != "" {
		s3pub, err := publish.NewS3Publisher(ctx, publish.S3Config{
			Bucket: cfg.Publish.S3Bucket,
			Prefix: cfg.Publish.S3Prefix,
			Region: cfg.Publish.S3Region,
		})
		if err != nil {
			return nil, err
		}
		p.Publishers = append(p.Publishers, s3pub)
	}
	if cfg.Publish.YouTubeCredentials != "" {
		ytpub, err := publish.NewYouTubePublisher(ctx, cfg.Publish.YouTubeCredentials)
		if err != nil {
			return nil, err
		}
		p.Publishers = append(p.Publishers, ytpub)
	}

	return &app{pipeline: p, planner: planner, renderer: assembler, seen: seen}, nil
}

func runServer(a *app) {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	router := api.NewRouter(api.NewServer(a.pipeline, a.planner, a.renderer))
	log.Printf("starting API server on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runConsumer(cfg config.Config, a *app) {
	consumer, err := queue.NewConsumer(queue.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
		Handler: &queue.ArticleHandler{Planner: a.planner, Renderer: a.renderer},
	})
	if err != nil {
		log.Fatalf("kafka consumer: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("kafka consumer start: %v", err)
	}

	waitForShutdown()
}

func runScheduled(spec string, a *app) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := a.pipeline.Run(context.Background()); err != nil {
			log.Printf("scheduled run failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("invalid cron expression %q: %v", spec, err)
	}

	c.Start()
	defer c.Stop()
	log.Printf("scheduled batch runs with %q", spec)

	waitForShutdown()
}

func waitForShutdown() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Printf("shutting down")
}
