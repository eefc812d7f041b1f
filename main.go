package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"

	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/core"
	"github.com/Technova-K02/eth-monitor/core/oracle"
	"github.com/Technova-K02/eth-monitor/network"
	"github.com/Technova-K02/eth-monitor/notify"
)

type environment struct {
	ConfigPath string `envconfig:"CONFIG_PATH" default:"monitor.toml"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
}

func setupLogger(cfg config.Monitor, env environment) {
	level := cfg.LogLevel
	if env.LogLevel != "" {
		level = env.LogLevel
	}
	if level == "" {
		level = "info"
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", level)
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using the process environment")
	}

	env := environment{}
	if err := envconfig.Process("", &env); err != nil {
		panic(err)
	}

	cfg, err := config.Load(env.ConfigPath)
	if err != nil {
		panic(err)
	}

	setupLogger(cfg, env)

	networkHttp := network.NewHttp()
	tpm := oracle.NewTokenPriceManager(cfg.PriceProviders, cfg.Tokens, networkHttp)
	notifier := notify.NewNotifier(cfg.Notifier, networkHttp)

	processor := core.NewProcessor(cfg, tpm, notifier)
	processor.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down")
	processor.Stop()
}
