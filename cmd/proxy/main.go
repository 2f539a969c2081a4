package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/papercomputeco/webui-relay/pkg/config"
	"github.com/papercomputeco/webui-relay/pkg/logger"
	"github.com/papercomputeco/webui-relay/proxy"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to a TOML config file")
	listenAddr := flag.String("listen", config.DefaultListenAddr, "Address to listen on")
	upstreamURL := flag.String("upstream", config.DefaultUpstreamURL, "Open WebUI base URL")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Explicit flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.ListenAddr = *listenAddr
		case "upstream":
			cfg.UpstreamURL = *upstreamURL
		case "debug":
			cfg.Debug = *debug
		}
	})

	// Set up logger
	logger := logger.NewLogger(cfg.Debug)
	defer logger.Sync()

	logger.Info("webui relay starting",
		zap.String("listen", cfg.ListenAddr),
		zap.String("upstream", cfg.UpstreamURL),
		zap.Bool("debug", cfg.Debug),
	)

	p, err := proxy.New(proxy.Config{
		ListenAddr:  cfg.ListenAddr,
		UpstreamURL: cfg.UpstreamURL,
		APIKey:      cfg.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create relay", zap.Error(err))
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down relay")
		if err := p.Shutdown(); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	if err := p.Run(); err != nil {
		logger.Fatal("relay server failed", zap.Error(err))
	}
}
