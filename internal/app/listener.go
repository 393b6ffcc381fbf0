package app

import (
	"fmt"
	"net/http"

	"github.com/vk/synthgrid/internal/metrics"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startListener runs the HTTP server exposing health and engine metrics.
func (a *App) startListener(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/metrics", metrics.Handler())

	addr := fmt.Sprintf(":%d", port)

	go func() {
		a.logger.Info("HTTP listener starting", "address", fmt.Sprintf("http://localhost%s", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.logger.Error("HTTP listener failed", "error", err)
		}
	}()
}
