package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ironsheep/artifact-crop/internal/config"
	"github.com/ironsheep/artifact-crop/internal/detection"
	"github.com/ironsheep/artifact-crop/internal/imaging"
	"github.com/ironsheep/artifact-crop/internal/keys"
	"github.com/ironsheep/artifact-crop/internal/render"
	"github.com/ironsheep/artifact-crop/internal/server"
	"github.com/ironsheep/artifact-crop/internal/session"
	"github.com/ironsheep/artifact-crop/internal/vision/opencv"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("artifact-crop - assisted rotate and crop for photographed coins and dies")
	fmt.Println()
	fmt.Println("Usage: artifact-crop [options] <input image> <output image>")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Keys are read from stdin, one name per line:")
	fmt.Println("  rotate: pgup pgdn tab up down left right space e g c r f enter")
	fmt.Println("  crop:   pgup pgdn w s up down left right c r f enter backspace")
	fmt.Println("  save:   enter backspace")
	fmt.Println("  esc cancels without writing anything.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug    Enable debug logging\n", config.LogLevelEnv)
}

func main() {
	configPath := flag.String("config", "", "JSON configuration file")
	mode := flag.String("mode", "", "Initial crop mode: circle, rectangle or freeform")
	serve := flag.Bool("serve", false, "Drive the session over MCP on stdin/stdout instead of keys")
	previewPath := flag.String("preview", "", "Rewrite this image with the current preview after every command")
	width := flag.Int("width", 0, "Display width in pixels")
	height := flag.Int("height", 0, "Display height in pixels")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this path and exit")

	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("artifact-crop %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}
	flag.Parse()

	// Configure logging to stderr (stdout carries MCP traffic when serving)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}
	cfg.ApplyEnv()
	if *mode != "" {
		if _, err := session.ParseCropMode(*mode); err != nil {
			log.Fatalf("Invalid -mode: %v", err)
		}
		cfg.DefaultMode = *mode
	}
	if *width > 0 {
		cfg.DisplayWidth = *width
	}
	if *height > 0 {
		cfg.DisplayHeight = *height
	}
	_ = cfg.Validate()

	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		return
	}

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	input, output := flag.Arg(0), flag.Arg(1)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if cfg.SlogLevel() == slog.LevelDebug {
		log.Printf("artifact-crop v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	// Both paths are checked before any analysis so a late permission
	// failure cannot discard the operator's work.
	if err := imaging.CheckInput(input); err != nil {
		log.Fatalf("Input check failed: %v", err)
	}
	if err := imaging.CheckOutput(output); err != nil {
		log.Fatalf("Output check failed: %v", err)
	}

	src, err := imaging.Load(input)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}
	info, err := imaging.Describe(src, input)
	if err != nil {
		log.Fatalf("Failed to describe image: %v", err)
	}
	logger.Info("loaded image",
		"path", input,
		"width", info.Width,
		"height", info.Height,
		"format", info.Format,
		"color_depth", info.ColorDepth,
		"bytes", info.FileSizeBytes)

	prim := opencv.New()
	detector := detection.NewDetector(prim, cfg.DetectionParams(), logger)
	controller := session.NewController(detector, prim, cfg.SessionOptions(output), logger)
	renderer, err := render.NewRenderer(cfg.RenderOptions(), prim)
	if err != nil {
		log.Fatalf("Invalid render options: %v", err)
	}

	state, err := controller.Start(src)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	var final session.State
	if *serve {
		srv := server.New(controller, renderer, state, logger)
		srv.SetSource(info)
		if err := srv.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
		final = srv.State()
	} else {
		hook := func(s session.State) error {
			report(s)
			if *previewPath == "" {
				return nil
			}
			img, err := renderer.Preview(s)
			if err != nil {
				return err
			}
			return imaging.SavePreview(img, *previewPath)
		}
		if err := hook(state); err != nil {
			log.Fatalf("Preview failed: %v", err)
		}
		final, err = keys.Run(os.Stdin, controller, state, hook, logger)
		if err != nil {
			log.Fatalf("Session ended: %v", err)
		}
	}

	switch final.Phase {
	case session.PhaseDone:
		log.Printf("Saved %s", output)
	case session.PhaseCancelled:
		log.Printf("Cancelled, nothing written")
	default:
		log.Printf("Session ended in %s phase, nothing written", final.Phase)
		os.Exit(1)
	}
}

// report prints the phase and the selected candidate to stderr.
func report(s session.State) {
	labels, index := s.Labels()
	switch {
	case len(labels) > 0:
		fmt.Fprintf(os.Stderr, "%s: %s (%d/%d)\n", s.Phase, labels[index], index+1, len(labels))
	case s.Final != nil:
		b := s.Final.Bounds()
		fmt.Fprintf(os.Stderr, "%s: %dx%d\n", s.Phase, b.Dx(), b.Dy())
	default:
		fmt.Fprintf(os.Stderr, "%s: %s\n", s.Phase, s.Mode)
	}
}
