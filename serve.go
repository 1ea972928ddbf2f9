package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevinaaaquil/digilib/config"
	"github.com/kevinaaaquil/digilib/handlers"
	"github.com/kevinaaaquil/digilib/importer"
	"github.com/kevinaaaquil/digilib/reader"
	"github.com/kevinaaaquil/digilib/service"
	"github.com/kevinaaaquil/digilib/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

The catalog is built at startup from, in order: the built-in curated books,
the JSON seed file, the Excel workbook (or sample books when there is none)
and the MongoDB snapshot when MONGODB_URI is set. A source that fails is
logged and skipped. The catalog lives in memory.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	cfg.LogWarnings(logger)

	var db *store.DB
	if cfg.MongoEnabled() {
		db, err = store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			logger.Warn("mongodb unavailable, continuing without snapshot", "error", err)
			db = nil
		} else {
			defer func() {
				if err := db.Disconnect(context.Background()); err != nil {
					logger.Warn("mongodb disconnect", "error", err)
				}
			}()
		}
	}

	catalog := store.NewCatalog()
	seedCatalog(ctx, cfg, catalog, db, logger)

	lib, err := metaLibrary(cfg)
	if err != nil {
		return err
	}

	files, err := fileStore(ctx, cfg)
	if err != nil {
		return err
	}

	var notifier service.Notifier = service.LogNotifier{Logger: logger}
	if cfg.SMTPEnabled() {
		notifier = service.NewMailNotifier(service.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			To:       cfg.AdminEmail,
		})
	}

	authHandler, err := handlers.NewAuthHandler(cfg.JWTSecret, cfg.TokenTTL, cfg.AdminUsername, cfg.AdminPassword, store.NewActivity())
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	router := &handlers.Router{
		JWTSecret: cfg.JWTSecret,
		UploadDir: cfg.UploadDir,
		Auth:      authHandler,
		Books: &handlers.BooksHandler{
			Catalog:  catalog,
			Meta:     lib,
			Files:    files,
			ISBN:     service.NewISBNLookup(),
			MaxBytes: cfg.MaxUploadBytes(),
			Logger:   logger,
		},
		Activity: &handlers.ActivityHandler{
			Catalog:  catalog,
			Activity: authHandler.Activity,
			Notifier: notifier,
			Logger:   logger,
		},
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr, "books", catalog.Len())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

// seedCatalog fills the catalog. Curated books go first so they are listed
// ahead of large imported sets.
func seedCatalog(ctx context.Context, cfg *config.Config, c *store.Catalog, db *store.DB, logger *slog.Logger) {
	if curated, err := importer.CuratedSeeds(); err != nil {
		logger.Error("curated books skipped", "error", err)
	} else {
		importer.Load(c, curated, "curated", logger)
	}

	if cfg.SeedFile != "" {
		books, err := importer.ReadSeedFile(cfg.SeedFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Info("seed file not found; run `digilib import` to create it", "path", cfg.SeedFile)
		case err != nil:
			logger.Warn("seed file skipped", "path", cfg.SeedFile, "error", err)
		default:
			importer.Load(c, books, "seed file", logger)
		}
	}

	if cfg.ExcelFile != "" {
		runner := &importer.Runner{Timeout: cfg.ImportTimeout, Concurrency: 1, Logger: logger}
		rep := runner.Run(ctx, []importer.Source{importer.Excel{Path: cfg.ExcelFile, Logger: logger}})
		importer.Load(c, rep.Books, "workbook", logger)
	} else if samples, err := importer.SampleBooks(); err != nil {
		logger.Warn("sample books skipped", "error", err)
	} else {
		importer.Load(c, samples, "samples", logger)
	}

	if db != nil {
		sctx, cancel := context.WithTimeout(ctx, cfg.ImportTimeout)
		defer cancel()
		books, err := db.AllBooks(sctx)
		if err != nil {
			logger.Warn("mongodb snapshot skipped", "error", err)
			return
		}
		importer.Load(c, books, "mongodb", logger)
	}
}

// metaLibrary is the built-in chapter metadata overlaid with META_FILE.
func metaLibrary(cfg *config.Config) (reader.Library, error) {
	builtin, err := reader.Builtin()
	if err != nil {
		return nil, fmt.Errorf("curated metadata: %w", err)
	}
	lib := reader.Library{}
	lib.Merge(builtin)
	if cfg.MetaFile != "" {
		extra, err := reader.LoadLibraryFile(cfg.MetaFile)
		if err != nil {
			return nil, fmt.Errorf("meta file: %w", err)
		}
		lib.Merge(extra)
	}
	return lib, nil
}

func fileStore(ctx context.Context, cfg *config.Config) (service.FileStore, error) {
	if cfg.S3Bucket != "" {
		s3, err := service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		return s3, nil
	}
	return service.NewDiskStore(cfg.UploadDir)
}
