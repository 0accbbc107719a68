package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/matst80/code-open/internal/obs"
	"github.com/matst80/code-open/internal/server"
	"github.com/matst80/code-open/internal/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type aliasRow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type stateResponse struct {
	server.Stats
	Aliases []aliasRow `json:"aliases"`
	Now     string     `json:"now"`
}

func collectState(srv *server.Server) stateResponse {
	table := srv.Table()
	rows := make([]aliasRow, 0, len(table))
	for _, from := range table.Keys() {
		rows = append(rows, aliasRow{From: from, To: table[from]})
	}
	return stateResponse{Stats: srv.Stats(), Aliases: rows, Now: time.Now().UTC().Format(time.RFC3339)}
}

func newStatusMux(srv *server.Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(collectState(srv))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		st := collectState(srv)
		data := st.ToTemplateMap()
		data["Aliases"] = st.Aliases
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := web.Render(w, "status", data); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if srv.IsClosing() || !srv.IsReady() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	return mux
}

// startMetricsServer serves Prometheus metrics, health endpoints and the
// status page until ctx is cancelled.
func startMetricsServer(ctx context.Context, addr string, srv *server.Server) {
	hs := &http.Server{Addr: addr, Handler: newStatusMux(srv), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		obs.Error("metrics.server", obs.Fields{"err": err, "addr": addr})
	}
}
