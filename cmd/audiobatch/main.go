// Copyright (c) 2026 The AudioBatch Authors. All rights reserved.
// Use of this source code is governed by the MIT License.
//
// AudioBatch - batch media-to-audio conversion tool

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/audiobatch/audiobatch/internal/api"
	"github.com/audiobatch/audiobatch/internal/config"
	"github.com/audiobatch/audiobatch/internal/cover"
	"github.com/audiobatch/audiobatch/internal/ffmpeg"
	"github.com/audiobatch/audiobatch/internal/logger"
	"github.com/audiobatch/audiobatch/internal/mediafile"
	"github.com/audiobatch/audiobatch/internal/meta"
	"github.com/audiobatch/audiobatch/internal/queue"
	"github.com/audiobatch/audiobatch/internal/report"
	"github.com/audiobatch/audiobatch/internal/task"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	serve := flag.Bool("serve", false, "Start the HTTP control surface instead of a one-shot run")
	bind := flag.String("bind", "", "Bind address for -serve (overrides config)")
	ffmpegBin := flag.String("ffmpeg", "", "FFmpeg binary path (overrides config)")
	ffprobeBin := flag.String("ffprobe", "", "FFprobe binary path (overrides config)")

	outDir := flag.String("o", ".", "Output directory")
	format := flag.String("format", "mp3", "Output audio format (mp3, aac, m4a, flac, ogg, opus)")
	template := flag.String("template", "", "Output name template (overrides config)")
	bitrate := flag.Int("b", 0, "Constant bitrate in kbps")
	vbr := flag.Int("vbr", -1, "VBR quality level (takes precedence over -b)")
	sampleRate := flag.Int("ar", 0, "Output sample rate in Hz")
	channels := flag.Int("ac", 0, "Output channel count")
	threads := flag.Int("threads", 0, "Encoder thread hint")
	trimSpec := flag.String("trim", "", "Trim window in seconds: start-end or start")
	normalize := flag.Bool("normalize", false, "Two-pass EBU R128 loudness normalization")

	keepStructure := flag.Bool("keep-structure", false, "Mirror the input directory layout under the output directory")
	overwrite := flag.Bool("overwrite", false, "Overwrite existing outputs instead of skipping them")
	dryRun := flag.Bool("dry-run", false, "Plan the run without invoking the encoder")

	concurrency := flag.Int("n", 0, "Concurrent conversions (0 = half the logical CPUs)")
	throttleSpec := flag.String("throttle", "", "Throttle tier: off, medium, low (overrides config)")
	retries := flag.Int("retry", 0, "Encode attempts per file (overrides config)")

	autoMeta := flag.Bool("auto-meta", true, "Derive tags from filename when the container has none")
	preferDetected := flag.Bool("prefer-detected", false, "Detected tags win over explicit overrides")
	title := flag.String("title", "", "Title tag override")
	artist := flag.String("artist", "", "Artist tag override")
	album := flag.String("album", "", "Album tag override")
	genre := flag.String("genre", "", "Genre tag override")
	date := flag.String("date", "", "Date tag override")
	track := flag.String("track", "", "Track tag override")
	comment := flag.String("comment", "", "Comment tag override")
	coverPath := flag.String("cover", "", "Explicit cover image path")

	resumePath := flag.String("resume", "", "Resume queue file to merge and update")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Load config: %v", err)
		}
	}
	if *ffmpegBin != "" {
		cfg.Engine.FFmpeg = *ffmpegBin
	}
	if *ffprobeBin != "" {
		cfg.Engine.FFprobe = *ffprobeBin
	}

	logg := logger.New("audiobatch", *verbose)

	engine, err := ffmpeg.New(ffmpeg.Config{
		FFmpeg:  cfg.Engine.FFmpeg,
		FFprobe: cfg.Engine.FFprobe,
	})
	if err != nil {
		log.Fatalf("FFmpeg init: %v", err)
	}

	rules, err := cover.CompileRules(cfg.Cover.Rules)
	if err != nil {
		log.Fatalf("Cover rules: %v", err)
	}
	covers := cover.NewResolver(engine, rules, cfg.Cover.DefaultSeconds)

	workDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("Working directory: %v", err)
	}

	stallTimeout := time.Duration(cfg.Convert.StallTimeoutSecs) * time.Second

	if *serve {
		bindAddr := cfg.Server.Bind
		if *bind != "" {
			bindAddr = *bind
		}
		runServer(bindAddr, engine, covers, logg, workDir, stallTimeout)
		return
	}

	// One-shot batch run. Scheduling-level errors abort before any task
	// is created.
	trim, err := task.ParseTrim(*trimSpec)
	if err != nil {
		log.Fatalf("Trim: %v", err)
	}
	throttleName := cfg.Convert.Throttle
	if *throttleSpec != "" {
		throttleName = *throttleSpec
	}
	throttle, err := task.ParseThrottle(throttleName)
	if err != nil {
		log.Fatalf("Throttle: %v", err)
	}

	inputs := flag.Args()
	var resumeQueue queue.ResumeQueue
	if *resumePath != "" {
		resumeQueue, err = queue.Load(*resumePath)
		if err != nil {
			log.Fatalf("Resume queue: %v", err)
		}
		inputs = resumeQueue.Merge(inputs)
	}
	if len(inputs) == 0 {
		log.Fatal("No input files or patterns given")
	}

	candidates, err := mediafile.Resolve(inputs, workDir)
	if err != nil {
		log.Fatalf("Resolve inputs: %v", err)
	}
	if len(candidates) == 0 {
		logg.Info("no media files matched")
		return
	}

	req := task.Request{
		Candidates:     candidates,
		WorkDir:        workDir,
		OutputDir:      *outDir,
		Format:         *format,
		NameTemplate:   firstNonEmpty(*template, cfg.Convert.NameTemplate),
		BitrateKbps:    *bitrate,
		VBRQuality:     *vbr,
		SampleRate:     *sampleRate,
		Channels:       *channels,
		Threads:        *threads,
		Trim:           trim,
		Normalize:      *normalize,
		KeepStructure:  *keepStructure,
		Overwrite:      *overwrite,
		DryRun:         *dryRun,
		Concurrency:    firstPositive(*concurrency, cfg.Convert.Concurrency),
		Throttle:       throttle,
		StartDelay:     time.Duration(cfg.Convert.StartDelayMillis) * time.Millisecond,
		Retry: task.RetryPolicy{
			Attempts: firstPositive(*retries, cfg.Convert.RetryAttempts),
			Delay:    time.Duration(cfg.Convert.RetryDelayMillis) * time.Millisecond,
		},
		AutoMeta:       *autoMeta,
		PreferDetected: *preferDetected,
		Overrides: meta.Bundle{
			Title:   *title,
			Artist:  *artist,
			Album:   *album,
			Genre:   *genre,
			Date:    *date,
			Track:   *track,
			Comment: *comment,
		},
		CoverPath: *coverPath,
	}

	terminal := report.NewTerminal(os.Stderr, logg, len(candidates))
	stream := report.NewStream(256, terminal)

	runner := task.NewRunner(task.Config{
		Engine:       engine,
		Covers:       covers,
		Logger:       logg,
		Events:       stream,
		StallTimeout: stallTimeout,
	})

	results := runner.Run(context.Background(), req)
	stream.Close()

	summary := report.Summarize(results)
	terminal.Finish(summary)

	if *resumePath != "" {
		resumeQueue.Record(results)
		if err := resumeQueue.Save(*resumePath); err != nil {
			logg.Error("save resume queue: %v", err)
		}
	}

	if !summary.AllOK() {
		os.Exit(1)
	}
}

func runServer(bindAddr string, engine ffmpeg.Engine, covers *cover.Resolver, logg logger.Logger, workDir string, stallTimeout time.Duration) {
	handler := api.NewHandler(engine, covers, logg, workDir, stallTimeout)

	r := gin.Default()
	r.Use(gin.Recovery(), cors.Default())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/engine", handler.Engine)

		v1.GET("/runs", handler.ListRuns)
		v1.POST("/runs", handler.AddRun)
		v1.GET("/runs/:id", handler.GetRun)
		v1.GET("/runs/:id/events", handler.GetEvents)
		v1.PUT("/runs/:id/command", handler.Command)
	}

	log.Printf("AudioBatch listening on %s (engine %s)", bindAddr, engine.Version())
	if err := r.Run(bindAddr); err != nil {
		log.Fatalf("Server: %v", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
