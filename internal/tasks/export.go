package tasks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/shared"
	"github.com/rlacey/statify/internal/stats"
)

// Export loads a full dashboard for the given TimeRange and packages it as a
// downloadable document.
func (e *DashboardEngine) Export(ctx context.Context, progress chan<- ProgressUpdate, tr models.TimeRange) (*models.ExportDocument, error) {
	dashboard, err := e.Load(ctx, progress, tr)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, exportUpdate(1, 2, ""))
	doc := stats.NewExportDocument(
		dashboard.Profile,
		dashboard.TopArtists,
		dashboard.TopTracks,
		dashboard.Recent,
		dashboard.Features,
		tr,
		time.Now(),
	)
	return &doc, nil
}

// ExportToFile writes the export document as pretty JSON. An empty path
// returns the bytes without touching disk, for stdout use.
func (e *DashboardEngine) ExportToFile(ctx context.Context, progress chan<- ProgressUpdate, tr models.TimeRange, path string) ([]byte, error) {
	doc, err := e.Export(ctx, progress, tr)
	if err != nil {
		return nil, err
	}

	data, err := shared.MarshalJSON(doc, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export document: %w", err)
	}

	if path != "" {
		e.sendProgress(progress, exportUpdate(2, 2, path))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write export file: %w", err)
		}
		e.logger.Info("export written", "path", path, "bytes", len(data))
	}

	return data, nil
}
