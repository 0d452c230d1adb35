// Package api provides HTTP handlers for the hexgrid server.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hexgrid/server/internal/data/ingest"
	"github.com/hexgrid/server/internal/hexgrid"
	"github.com/hexgrid/server/internal/service"
)

// RouterConfig contains router configuration.
type RouterConfig struct {
	Reports     *service.ReportService
	Dataset     *ingest.Dataset
	BaseConfig  hexgrid.ProcessingConfig
	CORSOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/regions", regionsHandler(cfg))
		r.Get("/summary", summaryHandler(cfg))
		r.Get("/grids/{region}/{side}/{metric}", gridHandler(cfg))
	})

	return r
}

// regionInfo describes one region of the loaded dataset.
type regionInfo struct {
	Region      hexgrid.Region `json:"region"`
	Layers      int            `json:"layers"`
	ColumnCount int            `json:"column_count"`
}

func regionsHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]regionInfo, 0, len(hexgrid.Regions))
		for _, region := range hexgrid.Regions {
			footprint, ok := cfg.Dataset.RegionColumns[region]
			if !ok {
				continue
			}
			out = append(out, regionInfo{
				Region:      region,
				Layers:      hexgrid.LayerCounts[region],
				ColumnCount: len(footprint),
			})
		}
		writeJSON(w, out)
	}
}

func summaryHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metric := cfg.BaseConfig.Metric
		if q := r.URL.Query().Get("metric"); q != "" {
			m, err := hexgrid.ParseMetric(q)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			metric = m
		}
		writeJSON(w, cfg.Reports.Summarize(cfg.Dataset.NeuronType, cfg.Dataset.Rows, metric))
	}
}

func gridHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		region, err := hexgrid.ParseRegion(chi.URLParam(r, "region"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		side, err := hexgrid.ParseSide(chi.URLParam(r, "side"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// The metric segment may carry a .svg/.png extension.
		metricParam := chi.URLParam(r, "metric")
		format := "svg"
		if i := strings.LastIndexByte(metricParam, '.'); i >= 0 {
			format = metricParam[i+1:]
			metricParam = metricParam[:i]
		}
		if q := r.URL.Query().Get("format"); q != "" {
			format = q
		}
		if format != "svg" && format != "png" {
			writeError(w, http.StatusBadRequest, "format must be svg or png")
			return
		}

		metric, err := hexgrid.ParseMetric(metricParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		proc := cfg.BaseConfig
		if q := r.URL.Query().Get("method"); q != "" {
			method, err := hexgrid.ParseThresholdMethod(q)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			proc.ThresholdMethod = method
		}
		if q := r.URL.Query().Get("buckets"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "buckets must be a positive integer")
				return
			}
			proc.Buckets = n
		}

		unit := service.Unit{Region: region, Side: side, Metric: metric, Format: format}
		res := cfg.Reports.RenderUnit(cfg.Dataset.NeuronType, cfg.Dataset.Rows, cfg.Dataset.RegionColumns, unit, proc)
		if !res.Success {
			writeError(w, http.StatusNotFound, strings.Join(res.Errors, "; "))
			return
		}

		if format == "png" {
			w.Header().Set("Content-Type", "image/png")
		} else {
			w.Header().Set("Content-Type", "image/svg+xml")
		}
		if len(res.Warnings) > 0 {
			w.Header().Set("X-Render-Warnings", strconv.Itoa(len(res.Warnings)))
		}

		if res.Inline != "" {
			w.Write([]byte(res.Inline))
			return
		}
		http.ServeFile(w, r, res.Path)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
