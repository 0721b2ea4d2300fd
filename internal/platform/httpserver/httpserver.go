package httpserver

import (
	"net/http"
	"time"
)

// New builds the process HTTP server. Header reads are bounded so a slow
// client cannot hold a connection open before routing; handler deadlines are
// left to per-request contexts.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
