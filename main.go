package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scoredlab/archivist/api"
	"github.com/scoredlab/archivist/archive"
	"github.com/scoredlab/archivist/export"
	"github.com/scoredlab/archivist/stats"
	"github.com/scoredlab/archivist/utils"
)

func main() {
	envPath := flag.String("env", ".env", "Path to .env file")
	logLevel := flag.String("log-level", "info", "Logging level (debug, info, warn, error)")
	exportPath := flag.String("export", "", "Export stats snapshot to this SQLite file and exit")
	flag.Parse()

	log := setupLogger(*logLevel)
	log.Info("Starting Archivist")

	config, err := utils.LoadConfig(*envPath, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	log.WithFields(logrus.Fields{
		"dataset":     config.Dataset.Path,
		"server_port": config.Server.Port,
	}).Info("Configuration loaded")

	a, err := archive.Open(config.Dataset.Path, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open archive")
	}
	log.WithField("users", len(a.Users())).Info("Archive opened")

	// -export takes precedence over the configured sink path; either one
	// switches the binary into one-shot snapshot mode
	snapshotPath := *exportPath
	if snapshotPath == "" {
		snapshotPath = config.Export.Path
	}
	if snapshotPath != "" {
		if err := runExport(a, snapshotPath, log); err != nil {
			log.WithError(err).Fatal("Export failed")
		}
		return
	}

	server := api.NewServer(a, log, config.Server.MaxRequestsPerMinute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go server.Start(ctx, config.Server.Port)

	waitForShutdown(cancel, log)
}

// runExport computes both statistics passes and writes the snapshot.
func runExport(a *archive.Archive, path string, log *logrus.Logger) error {
	log.WithField("path", path).Info("Computing statistics for export")

	db, err := export.NewDatabase(path, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveUserStats(stats.Users(a)); err != nil {
		return err
	}
	if err := db.SaveCommunityStats(stats.Communities(a)); err != nil {
		return err
	}

	log.Info("Export complete")
	return nil
}

// setupLogger sets up the logger with the specified log level
func setupLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// waitForShutdown waits for a shutdown signal
func waitForShutdown(cancel context.CancelFunc, log *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("Shutdown signal received")

	cancel()

	time.Sleep(1 * time.Second)
	log.Info("Archivist stopped")
}
