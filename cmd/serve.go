package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/haven-labs/haven-cli/internal/model"
	"github.com/haven-labs/haven-cli/internal/store"
	"github.com/haven-labs/haven-cli/internal/underwrite"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP evaluation API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ev, err := initEvaluator()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		api := &apiServer{evaluator: ev, store: st}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

type apiServer struct {
	evaluator *underwrite.Evaluator
	store     store.Store
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(rateLimit(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.RateBurst))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/deals", s.handleListDeals)
	r.Get("/deals/{id}", s.handleGetDeal)
	r.Get("/top-deals", s.handleTopDeals)

	return r
}

// rateLimit applies a global token-bucket limit across all clients.
func rateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload propertyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prop, err := payload.toPropertyInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, eris.Cause(err).Error())
		return
	}

	eval := s.evaluator.Evaluate(r.Context(), prop)

	if r.URL.Query().Get("save") == "true" {
		deal, err := s.store.SaveEvaluation(r.Context(), eval)
		if err != nil {
			zap.L().Error("save evaluation failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to persist evaluation")
			return
		}
		writeJSON(w, http.StatusOK, deal)
		return
	}

	writeJSON(w, http.StatusOK, eval)
}

func (s *apiServer) handleListDeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.DealFilter{
		Label:   model.Label(q.Get("label")),
		Zipcode: q.Get("zip"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}

	deals, err := s.store.ListDeals(r.Context(), filter)
	if err != nil {
		zap.L().Error("list deals failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list deals")
		return
	}
	if deals == nil {
		deals = []model.Deal{}
	}
	writeJSON(w, http.StatusOK, deals)
}

func (s *apiServer) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := s.store.GetDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "deal not found")
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

func (s *apiServer) handleTopDeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.ListingFilter{
		Zipcode:  q.Get("zip"),
		MinPrice: minScreeningPrice,
	}
	if maxPrice, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		filter.MaxPrice = maxPrice
	}
	limit := 25
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		limit = n
	}

	listings, err := s.store.SearchListings(r.Context(), filter)
	if err != nil {
		zap.L().Error("search listings failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to search listings")
		return
	}

	props := make([]model.PropertyInput, 0, len(listings))
	for _, l := range listings {
		props = append(props, l.ToPropertyInput(cfg.Screening))
	}

	evals, err := s.evaluator.EvaluateBatch(r.Context(), props, cfg.Batch.Workers)
	if err != nil {
		zap.L().Error("evaluate listings failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	sort.SliceStable(evals, func(i, j int) bool {
		return evals[i].RankScore > evals[j].RankScore
	})
	if len(evals) > limit {
		evals = evals[:limit]
	}
	if evals == nil {
		evals = []*model.DealEvaluation{}
	}
	writeJSON(w, http.StatusOK, evals)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
