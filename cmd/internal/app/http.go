package app

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authapi "shelf/cmd/internal/auth/api"
)

func newRouter(log Logger, cfg Config, dbPool *pgxpool.Pool, reg *prometheus.Registry, auth *authapi.Handler) *mux.Router {
	r := mux.NewRouter()

	live := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}
	r.HandleFunc("/health", live).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", live).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.ReadinessRequireDB && dbPool == nil {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}
		if dbPool != nil {
			if err := PingDB(req.Context(), dbPool, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	}).Methods(http.MethodGet)

	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	if auth != nil {
		auth.Register(r)
	}
	return r
}

// redirectHandler sends plaintext clients to the secure listener, swapping
// the request port for the HTTPS port. Requests without a Host get a hint.
func redirectHandler(httpsAddr string) http.Handler {
	_, securePort, _ := net.SplitHostPort(httpsAddr)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if host == "" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("Always HTTPS!"))
			return
		}
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		if securePort != "" && securePort != "443" {
			host = net.JoinHostPort(strings.Trim(host, "[]"), securePort)
		}
		http.Redirect(w, r, "https://"+host+r.URL.RequestURI(), http.StatusMovedPermanently)
	})
}
