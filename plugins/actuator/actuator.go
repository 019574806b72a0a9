// Package actuator contributes an HTTP admin endpoint next to the gRPC
// server, with health, build info, and prometheus metrics routes.
package actuator

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skekre98/chassis/core"
	"github.com/skekre98/chassis/plugins/rpcmetrics"
)

const Name = "actuator"

// Config is the actuator section of an application's configuration.
type Config struct {
	Addr     string `config:"addr"`
	BasePath string `config:"basePath"`
}

// Info describes the application for the /info route.
type Info struct {
	Name    string
	Version string
}

type Plugin struct {
	core.PluginBase

	cfg    Config
	info   Info
	logger *slog.Logger
	server *http.Server
}

func New(cfg Config, info Info, logger *slog.Logger) *Plugin {
	if cfg.Addr == "" {
		cfg.Addr = ":8081"
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/actuator"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Plugin{cfg: cfg, info: info, logger: logger}
}

func (p *Plugin) Name() string { return Name }

// DependsOn orders the actuator after the metrics plugin so its collectors
// exist before /metrics is served. The edge is ignored when that plugin is
// not active.
func (p *Plugin) DependsOn() []string { return []string{rpcmetrics.Name} }

func (p *Plugin) Configure(_ context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(RequestID())
	r.Use(Recovery(p.logger))
	r.Use(AccessLog(p.logger))

	group := r.Group(p.cfg.BasePath)

	group.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status": "UP",
			"checks": []gin.H{},
		})
	})

	group.GET("/info", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"app": gin.H{
				"name":    p.info.Name,
				"version": p.info.Version,
			},
			"runtime": gin.H{
				"go":           runtime.Version(),
				"numGoroutine": runtime.NumGoroutine(),
				"time":         time.Now().UTC().Format(time.RFC3339),
				"pid":          os.Getpid(),
			},
		})
	})

	group.GET("/metrics", gin.WrapH(promhttp.Handler()))

	p.server = &http.Server{
		Addr:    p.cfg.Addr,
		Handler: r,
	}
	return nil
}

func (p *Plugin) Start(_ context.Context) error {
	lis, err := net.Listen("tcp", p.cfg.Addr)
	if err != nil {
		return fmt.Errorf("actuator listen on %s: %w", p.cfg.Addr, err)
	}

	go func() {
		p.logger.Info("actuator server starting", "addr", p.cfg.Addr)
		if err := p.server.Serve(lis); err != nil && err != http.ErrServerClosed {
			p.logger.Error("actuator server error", "error", err)
		}
	}()
	return nil
}

func (p *Plugin) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := p.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("actuator shutdown: %w", err)
	}
	return nil
}
