// Package health exposes a minimal liveness endpoint for external uptime
// monitors.
package health

import (
	"io"
	"net/http"
)

// NewServer returns an HTTP server answering "ok" on / and /healthz.
func NewServer(port string) *http.Server {
	ok := func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "ok")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", ok)
	mux.HandleFunc("/healthz", ok)

	return &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
}
