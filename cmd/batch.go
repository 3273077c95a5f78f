package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alde/glassmap/internal/worker"
	"github.com/alde/glassmap/pkg/encoder"
	"github.com/alde/glassmap/pkg/preset"
	"github.com/alde/glassmap/pkg/progress"
	"github.com/alde/glassmap/pkg/render"
)

var (
	batchPresets  string
	batchSizes    string
	batchOutput   string
	batchFormat   string
	batchWorkers  int
	batchProgress bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Render map pairs for many presets and sizes",
	Long: `Render displacement and specular maps for a set of presets, optionally
at several sizes, using a pool of worker goroutines.

Examples:
  glassmap batch -o maps/
  glassmap batch --presets card,orb --sizes "64,128-256:64" -o maps/
  glassmap batch --presets panel-high --format webp --workers 4 -o maps/`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchPresets, "presets", "", "Comma separated presets (default: all)")
	batchCmd.Flags().StringVar(&batchSizes, "sizes", "", "Sizes to render, e.g. \"64,128-256:64\" (default: preset size)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Output directory (required)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "Image format (png, webp, bmp, tiff)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Number of worker goroutines (0 = config or auto)")
	batchCmd.Flags().BoolVar(&batchProgress, "progress", true, "Show a progress bar")

	batchCmd.MarkFlagRequired("output")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	presets, err := selectPresets(batchPresets)
	if err != nil {
		return fmt.Errorf("preset error: %w", err)
	}

	var sizes []int
	if batchSizes != "" {
		if sizes, err = preset.ParseSizes(batchSizes); err != nil {
			return fmt.Errorf("invalid sizes format: %w", err)
		}
	}

	format, err := cfg.Format()
	if err != nil {
		return err
	}
	if batchFormat != "" {
		if format, err = encoder.ParseFormat(batchFormat); err != nil {
			return err
		}
	}

	if err := validateOutputDir(batchOutput); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	workers := batchWorkers
	if workers == 0 {
		workers = cfg.Workers
	}

	tasks := render.PlanTasks(presets, sizes)
	r := render.New(batchOutput, format, logger)

	opts := render.BatchOptions{Workers: workers}
	if batchProgress {
		opts.Tracker = progress.NewTracker(os.Stderr, worker.Size(workers), len(tasks), verbose)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if verbose {
		fmt.Printf("Rendering %d map pairs (%d presets) as %s into %s\n", len(tasks), len(presets), format, batchOutput)
	}

	report, err := r.Batch(ctx, tasks, opts)
	render.PrintSummary(os.Stdout, report)
	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d render tasks failed", len(report.Failed), len(tasks))
	}
	return nil
}

func selectPresets(list string) ([]preset.Preset, error) {
	if strings.TrimSpace(list) == "" {
		return preset.All(), nil
	}

	var out []preset.Preset
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, err := preset.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no presets in %q", list)
	}
	return out, nil
}
