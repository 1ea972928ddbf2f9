package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kevinaaaquil/digilib/config"
	"github.com/kevinaaaquil/digilib/importer"
	"github.com/kevinaaaquil/digilib/store"
)

var (
	importOutput    string
	importSkipWeb   bool
	importSkipMongo bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Fetch books from external sources into the seed file",
	Long: `Fetch books from Project Gutenberg, Wikipedia and the library workbook.

Sources run concurrently, each under IMPORT_TIMEOUT. A download that fails
leaves a placeholder book explaining the error, so the title is still listed.
The result replaces the seed file and, when MONGODB_URI is set, the MongoDB
snapshot. Restart the server to pick it up.

Examples:
  digilib import
  digilib import --output books.json
  digilib import --skip-web     # workbook only`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "output file (default: SEED_FILE)")
	importCmd.Flags().BoolVar(&importSkipWeb, "skip-web", false, "skip Gutenberg and Wikipedia")
	importCmd.Flags().BoolVar(&importSkipMongo, "skip-mongo", false, "do not write the MongoDB snapshot")
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	out := importOutput
	if out == "" {
		out = cfg.SeedFile
	}
	if out == "" {
		return fmt.Errorf("no output file: pass --output or set SEED_FILE")
	}

	var sources []importer.Source
	if !importSkipWeb {
		fetcher := importer.NewFetcher()
		sources = append(sources, importer.GutenbergClassics(fetcher)...)
		sources = append(sources, importer.EngineeringTexts(fetcher, logger)...)
	}
	if cfg.ExcelFile != "" {
		sources = append(sources, importer.Excel{Path: cfg.ExcelFile, Logger: logger})
	}
	if len(sources) == 0 {
		return fmt.Errorf("nothing to import")
	}

	runner := &importer.Runner{Timeout: cfg.ImportTimeout, Concurrency: cfg.ImportConcurrency, Logger: logger}
	rep := runner.Run(ctx, sources)

	// Validate through a catalog so the output never carries a duplicate id
	// or an empty book.
	catalog := store.NewCatalog()
	importer.Load(catalog, rep.Books, "import", logger)
	books := catalog.Snapshot()

	if err := importer.WriteSeedFile(out, books); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("seed file written", "path", out, "books", len(books), "failed_sources", len(rep.Failed))

	if cfg.MongoEnabled() && !importSkipMongo {
		db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			return fmt.Errorf("mongodb: %w", err)
		}
		defer func() {
			if err := db.Disconnect(context.Background()); err != nil {
				logger.Warn("mongodb disconnect", "error", err)
			}
		}()
		if err := db.ReplaceBooks(ctx, books); err != nil {
			return fmt.Errorf("mongodb snapshot: %w", err)
		}
		logger.Info("mongodb snapshot replaced", "db", cfg.DBName, "books", len(books))
	}

	for _, f := range rep.Failed {
		fmt.Fprintln(cmd.ErrOrStderr(), "failed:", f)
	}
	return nil
}
