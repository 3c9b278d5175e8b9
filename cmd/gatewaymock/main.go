// gatewaymock - a scriptable mock gateway server for exercising client
// implementations against controllable protocol behavior.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatewaymock/gatewaymock/pkg/config"
	"github.com/gatewaymock/gatewaymock/pkg/gateway"
	"github.com/gatewaymock/gatewaymock/pkg/logging"
	"github.com/gatewaymock/gatewaymock/pkg/mockdata"
	"github.com/gatewaymock/gatewaymock/pkg/script"
)

// Build-time variables set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		scriptPath string
		seed       int64
	)

	cmd := &cobra.Command{
		Use:     "gatewaymock",
		Short:   "Mock gateway server for testing protocol clients",
		Version: fmt.Sprintf("%s (%s)", Version, Commit),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, scriptPath, seed)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "configuration file (YAML or JSON)")
	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "behavior script (overrides scriptPath from config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "mock data seed (0 uses the current time)")

	return cmd
}

func runServe(configPath, scriptPath string, seed int64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
	})

	if scriptPath == "" {
		scriptPath = cfg.ScriptPath
	}
	var scr *script.Script
	if scriptPath != "" {
		scr, err = script.ParseFile(scriptPath)
		if err != nil {
			return fmt.Errorf("load script: %w", err)
		}
		log.Info("script loaded", "path", scriptPath, "instructions", scr.Len())
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := mockdata.New(seed)

	srv := gateway.NewServer(gateway.Options{
		HeartbeatInterval: cfg.HeartbeatInterval.Duration(),
		HandshakeTimeout:  cfg.HandshakeTimeout.Duration(),
		SessionTTL:        cfg.SessionTTL.Duration(),
		ExternalURL:       cfg.ExternalURL,
		Bot:               cfg.Bot,
		Scenarios:         cfg.Scenarios,
		Script:            scr,
		Guilds:            gen.UnavailableGuilds(cfg.MockData.Guilds),
		Logger:            log,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
