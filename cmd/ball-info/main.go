package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"go.uber.org/zap"

	"github.com/ironsheep/ball-info/internal/config"
	"github.com/ironsheep/ball-info/internal/detection"
	"github.com/ironsheep/ball-info/internal/logging"
	"github.com/ironsheep/ball-info/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// argparse insists on a subcommand, so --version is handled up front.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("ball-info %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	parser := argparse.NewParser("ball-info", "Colored ball detector for a robot camera")
	configFile := parser.String("c", "config", &argparse.Options{Help: "YAML configuration file (defaults apply when omitted)"})

	streamCmd := parser.NewCommand("stream", "Detect balls in a camera or video stream and publish the results")
	streamInput := streamCmd.String("i", "input", &argparse.Options{Help: "Override source.input (device, URL, video file, image or directory)"})
	streamListen := streamCmd.String("l", "listen", &argparse.Options{Help: "Override publish.listen (empty string disables the websocket server)"})
	streamAnnotate := streamCmd.String("a", "annotate", &argparse.Options{Help: "Override annotate.dir"})
	streamEmpty := streamCmd.Flag("e", "publish-empty", &argparse.Options{Help: "Also publish frames without detections"})

	detectCmd := parser.NewCommand("detect", "Detect balls in image files and print one JSON line per image")
	detectImages := detectCmd.StringList("i", "image", &argparse.Options{Help: "Image file (repeatable)", Required: true})
	detectAnnotate := detectCmd.String("a", "annotate", &argparse.Options{Help: "Directory to write annotated PNGs to"})

	mcpCmd := parser.NewCommand("mcp", "Serve the calibration tools over MCP on stdin/stdout")
	classesCmd := parser.NewCommand("classes", "Print the color table in detection order")

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ball-info: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ball-info: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Debug("starting",
		zap.String("version", Version),
		zap.String("built", BuildTime),
		zap.String("commit", GitCommit))

	table, err := cfg.ColorTable()
	if err != nil {
		logger.Fatal("color table", zap.Error(err))
	}
	detector, err := detection.NewDetector(table, detection.WithLogger(logger))
	if err != nil {
		logger.Fatal("detector", zap.Error(err))
	}

	switch {
	case streamCmd.Happened():
		if *streamInput != "" {
			cfg.Source.Input = *streamInput
		}
		if isSet(os.Args[1:], "-l", "--listen") {
			cfg.Publish.Listen = *streamListen
		}
		if *streamAnnotate != "" {
			cfg.Annotate.Dir = *streamAnnotate
		}
		if *streamEmpty {
			cfg.Publish.PublishEmpty = true
		}
		err = runStream(cfg, detector, logger)
	case detectCmd.Happened():
		err = runDetect(*detectImages, *detectAnnotate, detector, os.Stdout, logger)
	case mcpCmd.Happened():
		err = server.New(detector, logger, Version).Run()
	case classesCmd.Happened():
		err = printClasses(os.Stdout, detector.Classes())
	}
	if err != nil {
		logger.Fatal("ball-info failed", zap.Error(err))
	}
}

// isSet reports whether any of the flag spellings appears on the command
// line, so that an explicitly empty --listen can disable the server.
func isSet(args []string, names ...string) bool {
	for _, a := range args {
		for _, n := range names {
			if a == n || len(a) > len(n) && a[:len(n)+1] == n+"=" {
				return true
			}
		}
	}
	return false
}
