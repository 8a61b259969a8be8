// Package http serves collection requests over HTTP.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nasdf/filex/core"
	"github.com/nasdf/filex/request"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Response is the body written for every request.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// ListenAndServe starts an http server bound to the given address.
//
// The server is shut down when the context is cancelled.
func ListenAndServe(ctx context.Context, db *core.DB, addr string, log *zap.SugaredLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/request", Handler(db, log))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	log.Infow("serving requests", "addr", addr, "path", db.Path())
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Handler returns an http.Handler that executes JSON encoded requests.
func Handler(db *core.DB, log *zap.SugaredLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req, err := request.Decode(r.Body)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to parse request: %v", err), http.StatusBadRequest)
			return
		}
		var res Response
		status := http.StatusOK
		res.Data, err = request.Execute(r.Context(), db, req)
		if err != nil {
			log.Debugw("request failed", "operation", req.Operation, "collection", req.Collection, "error", err)
			res.Error = err.Error()
			status = statusCode(err)
		}
		out, err := json.Marshal(res)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(out) //nolint:errcheck
	})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, core.ErrIOFailure):
		return http.StatusInternalServerError
	case errors.Is(err, core.ErrDuplicateID):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
