package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/claude/trailmark/internal/config"
	"github.com/claude/trailmark/internal/importer"
	"github.com/claude/trailmark/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	paths := flag.String("path", "", "comma-separated JSON dump files to import")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to the slot")
	export := flag.String("export", "", "write the stored workouts to this file (- for stdout) and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *paths == "" && *export == "" {
		fmt.Fprintf(os.Stderr, "Usage: trailmark-import -config config.yaml -path dump.json[,more.json] [-dry-run]\n")
		fmt.Fprintf(os.Stderr, "       trailmark-import -config config.yaml -export out.json\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	slot, err := storage.OpenSlot(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer slot.Close()
	persister := storage.NewPersister(slot, cfg.Storage.SlotKey, log)

	if *export != "" {
		if err := runExport(ctx, persister, *export, log); err != nil {
			log.Error("export failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *dryRun {
		log.Info("DRY RUN mode: nothing will be written to the slot")
	}

	imp := importer.New(persister, log, *dryRun)
	stats, err := imp.Import(ctx, strings.Split(*paths, ",")...)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func runExport(ctx context.Context, p *storage.Persister, path string, log *slog.Logger) error {
	out := os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	n, err := importer.Export(ctx, p, out)
	if err != nil {
		return err
	}
	log.Info("export complete", "workouts", n, "path", path)
	return nil
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"records_read", stats.RecordsRead,
		"imported", stats.Imported,
		"duplicated", stats.Duplicated,
		"skipped", stats.Skipped,
	)
	if len(stats.SkipReasons) > 0 {
		log.Info("skipped records", "reasons", stats.SkipReasons)
	}
}
