package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/health-export/internal/config"
	"github.com/jwalitptl/health-export/internal/export/columnar"
	csvexport "github.com/jwalitptl/health-export/internal/export/csv"
	"github.com/jwalitptl/health-export/internal/loader"
	"github.com/jwalitptl/health-export/internal/model"
	"github.com/jwalitptl/health-export/internal/telemetry"
	"github.com/jwalitptl/health-export/pkg/logger"
	"github.com/jwalitptl/health-export/pkg/metrics"
)

func main() {
	var (
		inputPath = flag.String("input", "-", "newline-delimited JSON patient feed, - for stdin")
		asOfFlag  = flag.String("as-of", "", "export reference time, RFC3339 (default now)")
	)
	flag.Parse()

	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	asOf := time.Now().UnixMilli()
	if *asOfFlag != "" {
		t, err := time.Parse(time.RFC3339, *asOfFlag)
		if err != nil {
			log.Fatal(err, "invalid -as-of value")
		}
		asOf = t.UnixMilli()
	}

	m := metrics.NewMetrics("health_export", "exporter")
	if cfg.Exporter.MetricsAddr != "" {
		go serveMetrics(cfg.Exporter.MetricsAddr, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	var csvExporter *csvexport.Exporter
	if cfg.Exporter.CSV {
		csvExporter, err = csvexport.New(cfg.Exporter.OutputDir, log, m)
		if err != nil {
			log.Fatal(err, "failed to open csv exporter")
		}
		defer csvExporter.Close()
	}

	var columnarExporter *columnar.Exporter
	if cfg.Exporter.Columnar {
		var reporter telemetry.Reporter
		if cfg.Telemetry.Enabled {
			reporter = telemetry.NewClient(cfg.Telemetry.URL, telemetry.RunInfo{
				RunID:      cfg.Telemetry.RunID,
				InstanceID: cfg.Telemetry.InstanceID,
				State:      cfg.Telemetry.State,
				Population: cfg.Telemetry.Population,
			}, log)
		}

		var sinks []columnar.Sink
		if cfg.Database.Enabled {
			db, err := loader.NewDB(cfg.Database)
			if err != nil {
				log.Fatal(err, "failed to connect to database")
			}
			defer db.Close()

			dbLoader := loader.New(db, log)
			if err := dbLoader.EnsureSchema(ctx); err != nil {
				log.Fatal(err, "failed to create database schema")
			}
			sinks = append(sinks, dbLoader)
		}

		columnarExporter, err = columnar.New(cfg.Exporter.OutputDir, cfg.Exporter.BatchCapacity, log, m, reporter, sinks...)
		if err != nil {
			log.Fatal(err, "failed to open columnar exporter")
		}
	}

	if err := run(ctx, *inputPath, asOf, csvExporter, columnarExporter, log); err != nil {
		log.Fatal(err, "export failed")
	}
	log.Info("export complete")
}

func run(ctx context.Context, inputPath string, asOf int64,
	csvExporter *csvexport.Exporter, columnarExporter *columnar.Exporter, log *logger.Logger) error {

	input := os.Stdin
	if inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	dec := json.NewDecoder(bufio.NewReader(input))
	exported := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var p model.Patient
		if err := dec.Decode(&p); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to decode patient: %w", err)
		}

		if csvExporter != nil {
			if err := csvExporter.Export(&p, asOf); err != nil {
				return err
			}
		}
		if columnarExporter != nil {
			if err := columnarExporter.Submit(ctx, &p, asOf); err != nil {
				return err
			}
		}
		exported++
	}

	if columnarExporter != nil {
		if err := columnarExporter.Finalize(ctx, asOf); err != nil {
			return err
		}
	}

	log.Info("processed patient feed", "patients", exported)
	return nil
}

func serveMetrics(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error(err, "metrics server failed")
	}
}
