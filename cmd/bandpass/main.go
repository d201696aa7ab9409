// Command bandpass splits an image into tiny, small and medium detail bands.
//
// Usage:
//
//	bandpass < in.ppm > bands.ppm                 # three PPMs back to back
//	bandpass -o out/ photo.png                    # out/photo_tiny.png, ...
//	bandpass -format ppm -debug-dir dbg photo.jpg # also dump smoothed scales
//	bandpass -serve                               # MCP server on stdio
//
// Environment variables:
//
//	BANDPASS_LOG_LEVEL=debug   Enable debug logging
//	BANDPASS_CHAINS=N          Run at most N radius chains at once
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/image-bandpass/internal/bandpass"
	"github.com/ironsheep/image-bandpass/internal/imaging"
	"github.com/ironsheep/image-bandpass/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// streamStem names the debug files written when the input comes from stdin.
const streamStem = "stdin"

// config is the parsed command line and environment.
type config struct {
	input    string
	outDir   string
	format   string
	debugDir string
	stats    bool
	serve    bool
	version  bool
	debug    bool
	opts     bandpass.Options
}

func main() {
	// Configure logging to stderr (stdout may carry image data or MCP traffic)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("Error: %v", err)
	}
}

// parseConfig reads flags from args and settings from the environment.
func parseConfig(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}

	fs := flag.NewFlagSet("bandpass", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.outDir, "o", "", "Output directory for band images (default: the input's directory)")
	fs.StringVar(&cfg.format, "format", "", "Output format: ppm, png, jpg, gif, tiff or bmp (default: input extension, ppm for stdin)")
	fs.StringVar(&cfg.debugDir, "debug-dir", "", "Also write the smoothed image of every radius into this directory")
	fs.BoolVar(&cfg.stats, "stats", false, "Print band statistics as JSON to stderr")
	fs.BoolVar(&cfg.serve, "serve", false, "Run as an MCP server on stdin/stdout")
	fs.BoolVar(&cfg.version, "version", false, "Print version information")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "bandpass - multi-scale band-pass image decomposition")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage: bandpass [options] [input]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Without an input file one image is read from stdin and the tiny, small")
		fmt.Fprintln(stderr, "and medium bands are written to stdout as consecutive PPM images.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Environment variables:")
		fmt.Fprintln(stderr, "  BANDPASS_LOG_LEVEL=debug    Enable debug logging")
		fmt.Fprintln(stderr, "  BANDPASS_CHAINS=N           Run at most N radius chains at once")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		cfg.input = fs.Arg(0)
	default:
		fs.Usage()
		return nil, fmt.Errorf("expected at most one input, got %d", fs.NArg())
	}

	cfg.debug = os.Getenv("BANDPASS_LOG_LEVEL") == "debug"
	if v := os.Getenv("BANDPASS_CHAINS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid BANDPASS_CHAINS %q", v)
		}
		cfg.opts.MaxChains = n
	}

	return cfg, nil
}

// run executes one invocation of the command.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		return err
	}

	if cfg.version {
		fmt.Fprintf(stdout, "bandpass %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return nil
	}

	if cfg.debug {
		log.Printf("bandpass v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	if cfg.serve {
		srv := server.New(&cfg.opts)
		if err := srv.Serve(stdin, stdout); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	if cfg.input == "" {
		return runStream(cfg, stdin, stdout, stderr)
	}
	return runFile(cfg, stderr)
}

// runStream decodes one image from stdin and writes the three bands to
// stdout back to back.
func runStream(cfg *config, stdin io.Reader, stdout, stderr io.Writer) error {
	format := cfg.format
	if format == "" {
		format = "ppm"
	}

	img, err := imaging.Decode(bufio.NewReader(stdin))
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	res, err := decompose(cfg, img)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(stdout)
	for _, b := range res.Bands {
		if err := imaging.Encode(bw, b.Image, format); err != nil {
			return fmt.Errorf("%s band: %w", b.Name, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing stdout: %w", err)
	}

	return finish(cfg, res, streamStem, format, stderr)
}

// runFile decomposes the input file and writes one file per band.
func runFile(cfg *config, stderr io.Writer) error {
	format := cfg.format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(cfg.input), ".")
	}
	if format == "" {
		format = "ppm"
	}
	outDir := cfg.outDir
	if outDir == "" {
		outDir = filepath.Dir(cfg.input)
	}

	img, err := imaging.Load(cfg.input)
	if err != nil {
		return err
	}

	res, err := decompose(cfg, img)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	stem := bandpass.Stem(cfg.input)
	paths, err := res.WriteBands(outDir, stem, format)
	if err != nil {
		return err
	}
	if cfg.debug {
		for _, p := range paths {
			log.Printf("wrote %s", p)
		}
	}

	return finish(cfg, res, stem, format, stderr)
}

func decompose(cfg *config, img *imaging.Image) (*bandpass.Result, error) {
	start := time.Now()
	res, err := bandpass.Decompose(img, &cfg.opts)
	if err != nil {
		return nil, fmt.Errorf("decomposition failed: %w", err)
	}
	if cfg.debug {
		log.Printf("decomposed %dx%d image in %v", img.Width, img.Height, time.Since(start))
	}
	return res, nil
}

// finish writes the optional debug images and statistics.
func finish(cfg *config, res *bandpass.Result, stem, format string, stderr io.Writer) error {
	if cfg.debugDir != "" {
		if err := os.MkdirAll(cfg.debugDir, 0o755); err != nil {
			return fmt.Errorf("failed to create debug directory: %w", err)
		}
		paths, err := res.WriteSmoothed(cfg.debugDir, stem, format)
		if err != nil {
			return err
		}
		if cfg.debug {
			log.Printf("wrote %d smoothed images to %s", len(paths), cfg.debugDir)
		}
	}

	if cfg.stats {
		enc := json.NewEncoder(stderr)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Summaries()); err != nil {
			return fmt.Errorf("writing statistics: %w", err)
		}
	}
	return nil
}
