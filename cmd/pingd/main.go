package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/skekre98/chassis/config"
	"github.com/skekre98/chassis/config/source"
	"github.com/skekre98/chassis/grpcapp"
	"github.com/skekre98/chassis/logging"
	"github.com/skekre98/chassis/plugins/actuator"
	"github.com/skekre98/chassis/plugins/healthcheck"
	"github.com/skekre98/chassis/plugins/rpclog"
	"github.com/skekre98/chassis/plugins/rpcmetrics"
)

type appInfo struct {
	Name    string `config:"name"`
	Version string `config:"version"`
}

type appConfig struct {
	App      appInfo         `config:"app"`
	Grpc     grpcapp.Config  `config:"grpc"`
	Logging  logging.Config  `config:"logging"`
	Actuator actuator.Config `config:"actuator"`
}

func (c appConfig) GrpcConfig() grpcapp.Config { return c.Grpc }

func main() {
	// 1) config: file < env < cli
	var cfg appConfig
	_, err := config.NewManager(&cfg, config.Options{},
		&source.FileSource{
			BasePath:  "configs",
			Profile:   os.Getenv("CHASSIS_PROFILE"),
			ExpandEnv: true,
		},
		&source.EnvSource{},
		&source.CLISource{},
	)
	if err != nil {
		panic(err)
	}

	// 2) logging
	logger := logging.New(cfg.Logging).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)

	// 3) compose the app
	app, err := grpcapp.New[appConfig](config.Static(cfg),
		grpcapp.WithLogger(logger),
		grpcapp.WithPlugins(
			rpcmetrics.New(nil),
			rpclog.New(logger),
			healthcheck.New(),
			actuator.New(cfg.Actuator, actuator.Info{
				Name:    cfg.App.Name,
				Version: cfg.App.Version,
			}, logger),
		),
	)
	if err != nil {
		logger.Error("app setup error", "error", err)
		os.Exit(1)
	}

	// 4) run until signal
	if err := app.Run(context.Background()); err != nil {
		logger.Error("app error", "error", err)
		os.Exit(1)
	}
}
