package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/kaartspel/toepen/internal/randutil"
	"github.com/kaartspel/toepen/internal/server"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Serve   ServeCmd         `cmd:"" default:"withargs" help:"Run the game server"`
}

type ServeCmd struct {
	Config   string `short:"c" default:"toepen.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     int64  `help:"Seed for shuffles and room codes (0 = time-based)"`
}

func (cmd *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(cmd.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cmd.LogLevel != "" {
		cfg.Server.LogLevel = cmd.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	seed := cmd.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	addr := cfg.GetServerAddress()
	if cmd.Addr != "" {
		addr = cmd.Addr
	}

	manager := server.NewRoomManager(cfg.Rules(), quartz.NewReal(), randutil.New(seed), logger)
	srv := server.NewServer(addr, manager, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting toepen server", "addr", addr, "config", cmd.Config)
	return srv.Run(ctx)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("toepen"),
		kong.Description("Authoritative server for the toepen card game"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
