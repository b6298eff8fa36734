package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gaspardpetit/promptrelay/core/secret"
	"github.com/gaspardpetit/promptrelay/internal/config"
	"github.com/gaspardpetit/promptrelay/internal/drain"
	"github.com/gaspardpetit/promptrelay/internal/logx"
	"github.com/gaspardpetit/promptrelay/internal/metrics"
	"github.com/gaspardpetit/promptrelay/internal/relay"
	"github.com/gaspardpetit/promptrelay/internal/server"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	cfg, notes, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if cfg.ShowVersion {
		fmt.Printf("promptrelay version=%s sha=%s date=%s\n", version, buildSHA, buildDate)
		return
	}
	logx.Configure(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("load config")
	}
	for _, n := range notes {
		logx.Log.Warn().Msg(n)
	}

	key := cfg.Upstream.APIKey
	keyOK := secret.ShapeOK(key, cfg.Upstream.KeyPrefix, cfg.Upstream.KeyMinLength)
	switch {
	case key == "":
		logx.Log.Warn().Str("env", cfg.Upstream.KeyEnv).Msg("upstream API key not set; /api/generate will fail")
	case !keyOK:
		logx.Log.Warn().Str("key", secret.Mask(key)).Str("prefix", cfg.Upstream.KeyPrefix).Msg("upstream API key has an unexpected shape")
	default:
		logx.Log.Info().Str("key", secret.Mask(key)).Msg("upstream API key loaded")
	}

	preg := prometheus.NewRegistry()
	metrics.Register(preg)
	metrics.SetServerBuildInfo(version, buildSHA, buildDate)
	metrics.SetAPIKeyConfigured(key != "")

	rl := relay.New(cfg.RelayConfig())
	handler := server.New(cfg, rl, version, preg)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	var metricsSrv *http.Server
	if !cfg.MetricsOnMainPort() {
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: server.MetricsHandler(preg), ReadHeaderTimeout: 10 * time.Second}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range sigCh {
			if drain.IsDraining() || cfg.DrainTimeout == 0 {
				logx.Log.Warn().Msg("termination requested")
				cancel()
				return
			}
			drain.Start()
			logx.Log.Info().Dur("timeout", cfg.DrainTimeout).Msg("draining; send SIGTERM again to terminate immediately")
			go func(d time.Duration) {
				time.Sleep(d)
				logx.Log.Warn().Dur("draining_for", drain.Since()).Msg("drain timeout exceeded; terminating")
				cancel()
			}(cfg.DrainTimeout)
		}
	}()
	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer scancel()
		if err := srv.Shutdown(sctx); err != nil {
			logx.Log.Error().Err(err).Msg("server shutdown")
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(sctx); err != nil {
				logx.Log.Error().Err(err).Msg("metrics server shutdown")
			}
		}
	}()

	if metricsSrv != nil {
		go func() {
			logx.Log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logx.Log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}
	def := rl.DefaultModel()
	logx.Log.Info().
		Int("port", cfg.Port).
		Str("upstream", cfg.Upstream.URL).
		Str("default_model", def.Key).
		Bool("mcp", cfg.MCPEnabled).
		Str("version", version).
		Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Log.Fatal().Err(err).Msg("server error")
	}
}
