package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Nixie-Tech-LLC/minaarly/internal/config"
	"github.com/Nixie-Tech-LLC/minaarly/internal/db"
	"github.com/Nixie-Tech-LLC/minaarly/internal/importer"
	"github.com/Nixie-Tech-LLC/minaarly/internal/redis"
)

var (
	importSheet   string
	importWorkers int
)

// importCmd loads mosque listings from an .xlsx workbook
var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import mosque listings from a spreadsheet",
	Long: `Import mosque listings from an Excel workbook.

The first row must be a header. Recognised columns: name, slug, street,
city, postal_code, latitude, longitude, description, facilities, phone,
email, website, verified. Listings are matched by slug, so re-running an
import updates rows in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet name (default: active sheet)")
	importCmd.Flags().IntVar(&importWorkers, "workers", 4, "concurrent database writes")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := importer.ImportFile(cmd.Context(), db.NewStore(conn), args[0], importSheet, importWorkers)
	if err != nil {
		return err
	}

	// cached viewport queries predate the import
	if rdb := redis.NewClient(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword); rdb != nil {
		defer rdb.Close()
		if err := redis.NewMosqueCache(rdb, nil, cfg.MapCacheTTL).Invalidate(cmd.Context()); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate mosque cache")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d mosque(s), skipped %d row(s)\n", res.Imported, len(res.Skipped))
	return nil
}
