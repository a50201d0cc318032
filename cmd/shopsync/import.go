package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tenjam/shopsync/internal/batch"
	"github.com/tenjam/shopsync/internal/client"
	"github.com/tenjam/shopsync/internal/config"
	"github.com/tenjam/shopsync/internal/core"
	"github.com/tenjam/shopsync/internal/logging"
)

var (
	importAPI string
	importDir string
)

// importFiles maps each entity type to its normalized CSV in the data
// directory. The slice order is the import order; it is never reordered.
var importFiles = []struct {
	entity core.EntityType
	file   string
}{
	{core.EntityEquipmentMatrix, "worker-equipment.csv"},
	{core.EntityProducts, "products.csv"},
	{core.EntityOrders, "orders.csv"},
	{core.EntityProductionHistory, "production-history.csv"},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run the full batch import against a running server",
	Long: `Imports the normalized CSVs from the data directory in dependency order
(equipment before steps before orders before production events), running
preview+confirm per entity type and halting on the first failure.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importAPI, "api", "http://localhost:3000", "import API base URL")
	importCmd.Flags().StringVar(&importDir, "data", ".", "directory holding the normalized CSVs")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	api := client.New(importAPI)

	slog.Info("waiting for import API", "url", importAPI)
	if err := batch.WaitHealthy(ctx, api.Health, cfg.Import.HealthTimeout, cfg.Import.HealthInterval); err != nil {
		return err
	}

	var sources []batch.Source
	for _, entry := range importFiles {
		path := filepath.Join(importDir, entry.file)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		sources = append(sources, batch.Source{
			Entity:  entry.entity,
			Name:    path,
			Content: content,
		})
	}

	result := batch.Run(ctx, api, sources)

	if !result.OK() {
		slog.Error("batch halted",
			"committed", result.Committed,
			"total", result.Total,
			"failed_entity", result.Failed,
			"error", result.Err,
		)
		return fmt.Errorf("completed %d/%d entity types, failed at %s: %w",
			result.Committed, result.Total, result.Failed, result.Err)
	}

	slog.Info("batch complete", "committed", result.Committed, "total", result.Total)
	return nil
}
