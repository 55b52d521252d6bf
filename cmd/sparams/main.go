package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"sparams/internal/models"
	"sparams/pkg/config"
	"sparams/pkg/extraction"
	"sparams/pkg/heightmap"
	"sparams/pkg/report"
	"sparams/pkg/visualization"
)

// options holds the command line; zero values mean "not given"
type options struct {
	input      string
	output     string
	configPath string
	initConfig bool
	size       float64
	region     string
	heatmap    bool
	minImage   int
	set        map[string]bool
	m          int
	workers    int
	raw        bool
	allBands   bool
	fill       bool
	format     string
	saveInter  bool
	interDir   string
	quiet      bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("sparams", flag.ContinueOnError)
	fs.StringVar(&opts.input, "input", "", "Height map file or directory of height maps")
	fs.StringVar(&opts.output, "output", "sparams.csv", "Output table file (- for stdout)")
	fs.StringVar(&opts.configPath, "config", "sparams.yaml", "Configuration file")
	fs.BoolVar(&opts.initConfig, "init-config", false, "Write the default configuration file and exit")
	fs.Float64Var(&opts.size, "size", 0, "Physical side length of each scan (0 for unit spacing)")
	fs.StringVar(&opts.region, "region", "", "Square sub-region row,col,size cut from every surface")
	fs.BoolVar(&opts.heatmap, "heatmap", false, "Render spectrum and ACF images with a colour palette")
	fs.IntVar(&opts.minImage, "image-size", 0, "Upscale intermediary images to at least this many pixels")
	fs.IntVar(&opts.m, "m", 0, "Angular resolution M (even, overrides the config)")
	fs.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (overrides the config)")
	fs.BoolVar(&opts.raw, "raw", false, "Evaluate statistical parameters on the raw heights")
	fs.BoolVar(&opts.allBands, "all-bands", false, "Report S_dc50-95 instead of its placeholder")
	fs.BoolVar(&opts.fill, "fill", false, "Reconstruct unmeasured (NaN) samples before extraction")
	fs.StringVar(&opts.format, "format", "", "Output format: csv or yaml (default from -output or config)")
	fs.BoolVar(&opts.saveInter, "save-intermediary", false, "Save intermediary images of every surface")
	fs.StringVar(&opts.interDir, "intermediary-dir", "", "Directory for intermediary images")
	fs.BoolVar(&opts.quiet, "quiet", false, "Only print errors")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if opts.input == "" && !opts.initConfig {
		fs.Usage()
		return nil, fmt.Errorf("-input is required")
	}
	return opts, nil
}

// applyFlags lets explicitly given flags override the configuration
func applyFlags(cfg *config.Config, opts *options) error {
	if opts.set["m"] {
		cfg.Extraction.M = opts.m
	}
	if opts.set["workers"] {
		cfg.Processing.NumWorkers = opts.workers
	}
	if opts.set["raw"] {
		cfg.Extraction.UseFitted = !opts.raw
	}
	if opts.set["all-bands"] {
		cfg.Extraction.EnableDc5095 = opts.allBands
	}
	if opts.set["fill"] {
		cfg.Extraction.FillMissing = opts.fill
	}
	if opts.set["format"] {
		cfg.Output.Format = opts.format
	} else if opts.set["output"] {
		cfg.Output.Format = report.FormatFromFilename(opts.output, cfg.Output.Format)
	}
	if opts.set["save-intermediary"] {
		cfg.Output.SaveIntermediary = opts.saveInter
	}
	if opts.set["intermediary-dir"] {
		cfg.Output.IntermediaryDir = opts.interDir
	}
	if opts.set["quiet"] {
		cfg.Output.Verbose = !opts.quiet
	}
	return cfg.Validate()
}

// parseRegion reads "row,col,size"
func parseRegion(s string) (row, col, size int, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("region must be row,col,size, got %q", s)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		vals[i], err = strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("region must be row,col,size, got %q", s)
		}
	}
	if vals[0] < 0 || vals[1] < 0 || vals[2] <= 0 {
		return 0, 0, 0, fmt.Errorf("region %q has a negative corner or empty size", s)
	}
	return vals[0], vals[1], vals[2], nil
}

func loadSurfaces(input string, size float64) ([]models.HeightMap, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return heightmap.LoadDir(input, size)
	}
	hm, err := heightmap.Load(input, size)
	if err != nil {
		return nil, err
	}
	return []models.HeightMap{hm}, nil
}

// cutRegions replaces every surface by its sub-region. Surfaces that are
// too small keep their full grid and fail later with a clear error, so
// the batch is not aborted.
func cutRegions(surfaces []models.HeightMap, region string, logger *log.Logger) ([]models.HeightMap, error) {
	row, col, size, err := parseRegion(region)
	if err != nil {
		return nil, err
	}
	out := make([]models.HeightMap, len(surfaces))
	for i, hm := range surfaces {
		cut, err := hm.Region(row, col, size)
		if err != nil {
			logger.Printf("%s: %v", hm.Name, err)
			out[i] = hm
			continue
		}
		out[i] = cut
	}
	return out, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.initConfig {
		if err := config.CreateDefaultConfigFile(opts.configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", opts.configPath)
		return
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := applyFlags(cfg, opts); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	var logWriter io.Writer = os.Stderr
	if !cfg.Output.Verbose {
		logWriter = io.Discard
	}
	logger := log.New(logWriter, "sparams: ", log.LstdFlags)

	if cfg.Output.Verbose {
		fmt.Fprintln(os.Stderr, "================================")
		fmt.Fprintln(os.Stderr, "AREAL SURFACE TEXTURE PARAMETERS (ISO 25178-2)")
		fmt.Fprintln(os.Stderr, "================================")
	}

	surfaces, err := loadSurfaces(opts.input, opts.size)
	if err != nil {
		log.Fatalf("Failed to load height maps: %v", err)
	}
	if opts.region != "" {
		surfaces, err = cutRegions(surfaces, opts.region, logger)
		if err != nil {
			log.Fatalf("Invalid region: %v", err)
		}
	}

	params, err := cfg.ExtractionParams()
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	extractor := extraction.NewExtractor(params, logger)
	if cfg.Output.Verbose {
		extractor.SetProgressCallback(func(completed, total int) {
			fmt.Fprintf(os.Stderr, "\rExtracting surfaces: %.1f%% complete", float64(completed)/float64(total)*100)
			if completed == total {
				fmt.Fprintln(os.Stderr)
			}
		})
	}
	if cfg.Output.SaveIntermediary {
		viewer := visualization.NewViewer(cfg.Output.IntermediaryDir, logger)
		viewer.SetColormap(opts.heatmap)
		viewer.SetMinSize(opts.minImage)
		extractor.SetCacheHook(viewer.Hook())
	}

	// Ctrl-C stops dispatching; surfaces in flight finish
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	startTime := time.Now()
	table := extractor.ExtractMany(ctx, surfaces)
	elapsed := time.Since(startTime)

	if opts.output == "-" {
		err = report.Write(os.Stdout, cfg.Output.Format, table)
	} else {
		err = report.SaveFile(opts.output, cfg.Output.Format, table)
	}
	if err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}

	failed := len(table.Failures())
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "\nProcessed %d surfaces in %.2f seconds (%d failed)\n", len(table.Rows), elapsed.Seconds(), failed)
		if opts.output != "-" {
			fmt.Fprintf(os.Stderr, "Results saved to: %s\n", opts.output)
		}
		if cfg.Output.SaveIntermediary {
			fmt.Fprintf(os.Stderr, "Intermediary images saved to: %s\n", cfg.Output.IntermediaryDir)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}
