// cmd/gateway-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"edugate/internal/lmsapi"
	"edugate/internal/mcpgw"
	"edugate/internal/oauthproxy"
	"edugate/internal/vclients"
	"edugate/pkg/config"
	"edugate/pkg/db"
	"edugate/pkg/logger"
	"edugate/pkg/middleware"
	"edugate/pkg/tenants"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	pool := db.MustConnect(cfg, log)
	rdb := db.MustRedis(cfg, log)

	var src tenants.CredentialSource
	if pool != nil {
		src = tenants.NewPostgresSource(pool, log)
		if err := tenants.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		if err := tenants.SeedFromEnv(context.Background(), pool, cfg.TenantCreds); err != nil {
			log.Warnw("seed", "err", err)
		}
	} else {
		src = tenants.NewEnvSource(cfg.TenantCreds)
	}
	registry := tenants.NewRegistry(src, cfg.BaseDomain, log)

	deriver := vclients.NewSecretDeriver(cfg.ServerSecret)
	var store vclients.Store
	if rdb != nil {
		store = vclients.NewRedisStore(rdb, deriver, log)
	} else {
		store = vclients.NewFileStore(cfg.VirtualClientsFile, deriver, log)
	}
	if err := store.Initialize(context.Background()); err != nil {
		log.Fatalw("virtual client store init", "err", err)
	}

	proxy := oauthproxy.NewHandler(cfg, log, registry, store)
	lms := lmsapi.NewClient(cfg, registry, log)
	gateway := mcpgw.New(cfg, log, lms)

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	// Public endpoints: allow cross-origin for browser-based MCP clients.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Mcp-Session-Id")
			w.Header().Set("Access-Control-Max-Age", "86400")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Use(middleware.Tracing())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})
	proxy.RegisterRoutes(r)
	gateway.RegisterRoutes(r)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Infow("gateway-service listening", "addr", cfg.HTTPAddr, "base_domain", cfg.BaseDomain)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("gateway-service stopped")
}
