package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alde/glassmap/pkg/encoder"
	"github.com/alde/glassmap/pkg/glassmap"
)

// Renderer writes displacement and specular map pairs to disk
type Renderer struct {
	OutputDir string
	Format    encoder.Format
	Logger    *slog.Logger
}

// Stats describes one rendered map pair
type Stats struct {
	Name             string
	Geometry         glassmap.Geometry
	DisplacementPath string
	SpecularPath     string
	BytesWritten     uint64
	MaxDisplacement  float64
	Duration         time.Duration
}

// New creates a renderer writing format files into outputDir
func New(outputDir string, format encoder.Format, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		OutputDir: outputDir,
		Format:    format,
		Logger:    logger.With(slog.String("component", "renderer")),
	}
}

// Paths returns the displacement and specular file paths for name
func (r *Renderer) Paths(name string) (string, string) {
	ext := r.Format.Extension()
	return filepath.Join(r.OutputDir, name+"-displacement"+ext),
		filepath.Join(r.OutputDir, name+"-specular"+ext)
}

// Render generates both maps for geom and writes them as
// <name>-displacement.<ext> and <name>-specular.<ext>.
func (r *Renderer) Render(ctx context.Context, name string, geom glassmap.Geometry) (Stats, error) {
	start := time.Now()
	stats := Stats{Name: name, Geometry: geom}

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	if err := os.MkdirAll(r.OutputDir, 0755); err != nil {
		return stats, fmt.Errorf("failed to create output directory: %w", err)
	}

	maps, err := glassmap.Generate(geom)
	if err != nil {
		return stats, fmt.Errorf("failed to generate maps for %s: %w", name, err)
	}
	stats.MaxDisplacement = maps.Displacement.MaxDisplacement

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	stats.DisplacementPath, stats.SpecularPath = r.Paths(name)

	n, err := encoder.SaveFile(stats.DisplacementPath, maps.Displacement.Pix, maps.Displacement.Width, maps.Displacement.Height)
	if err != nil {
		return stats, fmt.Errorf("failed to write displacement map: %w", err)
	}
	stats.BytesWritten += uint64(n)

	n, err = encoder.SaveFile(stats.SpecularPath, maps.Specular.Pix, maps.Specular.Width, maps.Specular.Height)
	if err != nil {
		return stats, fmt.Errorf("failed to write specular map: %w", err)
	}
	stats.BytesWritten += uint64(n)

	stats.Duration = time.Since(start)

	r.Logger.Debug("rendered map pair",
		slog.String("name", name),
		slog.String("geometry", geom.String()),
		slog.Float64("max_displacement", stats.MaxDisplacement),
		slog.Uint64("bytes", stats.BytesWritten),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}
