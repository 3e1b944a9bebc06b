package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prospectly/leadgen-cli/internal/model"
	"github.com/prospectly/leadgen-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for leads and scrape requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initIngest(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(ctx, env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the API routes. serverCtx backs asynchronous scrapes so
// they outlive the request that accepted them.
func newRouter(serverCtx context.Context, env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/leads", func(w http.ResponseWriter, req *http.Request) {
		filter := store.LeadFilter{
			Status: model.LeadStatus(req.URL.Query().Get("status")),
		}
		if v := req.URL.Query().Get("validated"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid validated parameter")
				return
			}
			filter.Validated = &b
		}
		if v := req.URL.Query().Get("limit"); v != "" {
			filter.Limit, _ = strconv.Atoi(v)
		}

		leads, err := env.Store.ListLeads(req.Context(), filter)
		if err != nil {
			zap.L().Error("list leads failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "list leads failed")
			return
		}
		if leads == nil {
			leads = []model.Lead{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"leads": leads, "count": len(leads)})
	})

	r.Get("/api/leads/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")

		lead, err := env.Store.GetLead(req.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "lead not found")
				return
			}
			zap.L().Error("get lead failed", zap.String("id", id), zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "get lead failed")
			return
		}

		analyses, err := env.Store.ListAnalyses(req.Context(), id)
		if err != nil {
			zap.L().Error("list analyses failed", zap.String("id", id), zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "list analyses failed")
			return
		}
		if analyses == nil {
			analyses = []model.Analysis{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"lead": lead, "analyses": analyses})
	})

	r.Post("/api/scrape", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Query      string `json:"query"`
			Location   string `json:"location"`
			MaxResults int    `json:"max_results"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Query == "" || body.Location == "" {
			writeJSONError(w, http.StatusBadRequest, "query and location are required")
			return
		}
		if body.MaxResults <= 0 {
			body.MaxResults = 50
		}

		// The scrape runs against the server context so a closed request
		// connection does not cancel it.
		go func() {
			summary, err := env.Ingestor.Run(serverCtx, body.Query, body.Location, body.MaxResults)
			if err != nil {
				zap.L().Error("async scrape failed",
					zap.String("query", body.Query),
					zap.String("location", body.Location),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("async scrape complete",
				zap.String("query", body.Query),
				zap.Int("saved", summary.Saved),
				zap.Int("skipped", summary.Skipped),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status": "accepted",
			"query":  body.Query,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
