// Package main is the entry point for the hexgrid server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hexgrid/server/internal/api"
	"github.com/hexgrid/server/internal/cache"
	"github.com/hexgrid/server/internal/config"
	"github.com/hexgrid/server/internal/data/ingest"
	"github.com/hexgrid/server/internal/hexgrid"
	"github.com/hexgrid/server/internal/render"
	"github.com/hexgrid/server/internal/service"
	"github.com/hexgrid/server/pkg/colormap"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/server.yaml", "Path to configuration file")
	flag.Parse()

	// Optional .env for local overrides; absence is fine.
	godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyEnvOverrides(cfg)

	log.Printf("Starting hexgrid server on port %d", cfg.Server.Port)

	// Load dataset
	dataset, err := ingest.Load(cfg.Data.DatasetPath)
	if err != nil {
		log.Fatalf("Failed to load dataset %s: %v", cfg.Data.DatasetPath, err)
	}
	log.Printf("Loaded dataset %q: %d rows, %d regions",
		dataset.NeuronType, len(dataset.Rows), len(dataset.RegionColumns))

	// Initialize cache manager
	cacheManager, err := cache.NewManager(cache.Config{
		RenderCacheSizeMB: cfg.Cache.RenderSizeMB,
		RenderTTL:         time.Duration(cfg.Cache.RenderTTLMinutes) * time.Minute,
		SummaryCacheSize:  cfg.Cache.SummaryEntries,
	})
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer cacheManager.Close()

	// Initialize pipeline components
	grids := service.NewGridService(service.GridServiceConfig{
		HexSize:       cfg.Render.HexSize,
		SpacingFactor: cfg.Render.SpacingFactor,
		Palette:       colormap.ByName(cfg.Render.Palette),
	})
	renderer := render.NewRenderer(render.Config{
		HexSize: cfg.Render.HexSize,
		Palette: colormap.ByName(cfg.Render.Palette),
	})
	reports := service.NewReportService(service.ReportServiceConfig{
		Grids:    grids,
		Renderer: renderer,
		Writer:   render.Writer{Dir: cfg.Render.OutputDir, Compress: cfg.Render.CompressSVG},
		Cache:    cacheManager,
		Workers:  cfg.Render.Workers,
	})

	baseCfg := hexgrid.ProcessingConfig{
		Metric:           hexgrid.MetricSynapseDensity,
		Side:             hexgrid.SideLeft,
		ThresholdMethod:  hexgrid.ThresholdMethod(cfg.Processing.ThresholdMethod),
		ValidationStrict: cfg.Processing.StrictValidate,
		MergeStrategy:    hexgrid.MergeStrategy(cfg.Processing.MergeStrategy),
		Buckets:          cfg.Processing.Buckets,
	}

	router := api.NewRouter(api.RouterConfig{
		Reports:     reports,
		Dataset:     dataset,
		BaseConfig:  baseCfg,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()
	log.Printf("Server ready")

	<-done
	log.Printf("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// applyEnvOverrides lets HEXGRID_* environment variables win over the
// YAML file, for container deployments.
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("HEXGRID_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HEXGRID_DATASET"); v != "" {
		cfg.Data.DatasetPath = v
	}
	if v := os.Getenv("HEXGRID_OUTPUT_DIR"); v != "" {
		cfg.Render.OutputDir = v
	}
	if v := os.Getenv("HEXGRID_PALETTE"); v != "" {
		cfg.Render.Palette = v
	}
}
