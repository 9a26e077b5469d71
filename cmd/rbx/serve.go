package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/rbx-client/pkg/client"
	"github.com/Sternrassler/rbx-client/pkg/entity"
	"github.com/Sternrassler/rbx-client/pkg/logging"
	"github.com/Sternrassler/rbx-client/pkg/metrics"
	"github.com/Sternrassler/rbx-client/pkg/ratelimit"
	"github.com/Sternrassler/rbx-client/pkg/roblox"
)

const requestTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP lookup gateway",
		Long: `Serve JSON lookups over HTTP:

  GET /health
  GET /metrics
  GET /users/{id}
  GET /users/{id}/presence
  GET /groups/{id}
  GET /places/{id}
  GET /universes/{id}
  GET /badges/{id}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			logger := logging.NewLogger(logging.ComponentServer)
			srv := &http.Server{
				Addr:              addr,
				Handler:           newServer(a.session, a.client.RateLimiter(), logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", addr).Msg("Starting gateway")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info().Msg("Shutting down gateway")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// newServer wires the gateway routes.
func newServer(s *roblox.Session, limiter *ratelimit.Tracker, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler(limiter))
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /users/{id}", lookupHandler(logger, func(ctx context.Context, id int64) (record, error) {
		u, err := s.Users.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return userRecord(u), nil
	}))
	mux.HandleFunc("GET /users/{id}/presence", lookupHandler(logger, func(ctx context.Context, id int64) (record, error) {
		p, err := s.Presence.Get(ctx, entity.ID(id))
		if err != nil {
			return nil, err
		}
		return presenceRecord(p), nil
	}))
	mux.HandleFunc("GET /groups/{id}", lookupHandler(logger, func(ctx context.Context, id int64) (record, error) {
		g, err := s.Groups.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return groupRecord(g), nil
	}))
	mux.HandleFunc("GET /places/{id}", lookupHandler(logger, func(ctx context.Context, id int64) (record, error) {
		p, err := s.Places.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return placeRecord(p), nil
	}))
	mux.HandleFunc("GET /universes/{id}", lookupHandler(logger, func(ctx context.Context, id int64) (record, error) {
		u, err := s.Universes.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return universeRecord(u), nil
	}))
	mux.HandleFunc("GET /badges/{id}", lookupHandler(logger, func(ctx context.Context, id int64) (record, error) {
		b, err := s.Badges.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return badgeRecord(b), nil
	}))

	return mux
}

type healthResponse struct {
	Status    string           `json:"status"`
	RateLimit *ratelimit.State `json:"rate_limit,omitempty"`
}

// healthHandler reports "degraded" while a 429 is outstanding. It never fails
// because of the platform's state.
func healthHandler(limiter *ratelimit.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if limiter != nil {
			state, err := limiter.State(r.Context())
			if err == nil {
				resp.RateLimit = state
				if !state.IsHealthy() {
					resp.Status = "degraded"
				}
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func lookupHandler(logger zerolog.Logger, fn func(ctx context.Context, id int64) (record, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		rec, err := fn(ctx, id)
		if err != nil {
			status := statusFor(err)
			logger.Warn().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Lookup failed")
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusOK, rec.Map())
	}
}

// statusFor maps lookup errors to gateway responses.
func statusFor(err error) int {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, roblox.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidEntity), errors.Is(err, entity.ErrMissingReferenceID):
		return http.StatusBadGateway
	case errors.Is(err, client.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusBadRequest):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
