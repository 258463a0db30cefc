// Command meshprov-device is a reference mesh network-commissioning device.
//
// It runs the network-provisioning driver on top of a simulated mesh stack,
// with a commissioning server in front of it. The server can be driven over
// TCP, from the interactive shell, or both.
//
// Usage:
//
//	meshprov-device [flags]
//
// Flags:
//
//	-config string          Configuration file path (YAML)
//	-log-level string       Log level: debug, info, warn, error (default "info")
//	-interactive            Enable interactive command mode
//	-listen string          Commissioning endpoint address (e.g. :5540)
//	-state-dir string       Directory for persistent state
//	-device-secret string   Secret sealing the provision file
//	-event-log string       Commissioning event log file (.mlog)
//	-reset                  Clear the persisted provision before starting
//	-connect-timeout dur    Attach timeout (default 20s)
//	-scan-timeout dur       Scan timeout (default 10s)
//	-mdns                   Scan for border agents over mDNS
//	-mdns-interface string  Network interface for mDNS browsing
//
// Every setting can also be given in the environment as MESHPROV_<NAME>,
// e.g. MESHPROV_LOG_LEVEL=debug.
//
// Examples:
//
//	# Interactive device with a persistent, sealed provision
//	meshprov-device -interactive -state-dir /var/lib/meshprov -device-secret s3cret
//
//	# Headless device commissioned over TCP, recording events
//	meshprov-device -listen :5540 -event-log device.mlog
//
//	# Start from a config file
//	meshprov-device -config /etc/meshprov/device.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/caarlos0/env/v11"
	"golang.org/x/sync/errgroup"

	"github.com/mash-protocol/meshprov/cmd/meshprov-device/interactive"
	"github.com/mash-protocol/meshprov/pkg/commissioning"
	"github.com/mash-protocol/meshprov/pkg/dataset"
	"github.com/mash-protocol/meshprov/pkg/discovery"
	"github.com/mash-protocol/meshprov/pkg/log"
	"github.com/mash-protocol/meshprov/pkg/netcomm"
	"github.com/mash-protocol/meshprov/pkg/persistence"
	"github.com/mash-protocol/meshprov/pkg/stack"
)

// ProvisionFile is the provision file name inside the state directory.
const ProvisionFile = "provision.cbor"

func main() {
	cfg, err := LoadConfig(os.Args[1:], env.ToMap(os.Environ()))
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	output := &logOutput{w: os.Stderr}
	level, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))

	if err := run(cfg, logger, output); err != nil {
		logger.Error("device failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger, output *logOutput) error {
	logger.Info("meshprov reference device",
		"listen", cfg.Listen,
		"stateDir", cfg.StateDir,
		"mdns", cfg.MDNS)

	events, closeEvents, err := openEventLog(cfg, logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store != nil && cfg.Reset {
		logger.Info("clearing persisted provision", "path", store.Path())
		if err := store.Clear(); err != nil {
			return err
		}
	}

	var scanner discovery.Scanner
	if cfg.MDNS {
		scanner = discovery.NewMDNSScanner(discovery.MDNSConfig{
			Interface: cfg.MDNSInterface,
			Timeout:   cfg.BrowseTimeout,
			Logger:    logger,
		})
	}

	sim := stack.NewSimulator(stack.Config{
		Store:          store,
		Scanner:        scanner,
		ConnectTimeout: cfg.ConnectTimeout,
		ScanTimeout:    cfg.ScanTimeout,
		Backoff:        cfg.Backoff,
		Logger:         logger.With("component", "stack"),
		Events:         events,
	})
	networks, err := cfg.SimulatedNetworks()
	if err != nil {
		return err
	}
	for _, n := range networks {
		if err := sim.AddNetwork(n); err != nil {
			return err
		}
		logger.Info("simulated network in reach", "network", n.Dataset.String())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sim.Run(gctx) })

	select {
	case <-sim.Ready():
	case <-gctx.Done():
		return g.Wait()
	}

	if raw, err := sim.Restore(); err != nil {
		logger.Warn("failed to restore provision", "error", err)
	} else if raw != nil {
		logger.Info("provision restored", "attached", sim.IsAttached())
	}

	driver := netcomm.NewDriver(sim, dataset.Parser{},
		netcomm.WithLogger(logger.With("component", "driver")),
		netcomm.WithEventLogger(events),
		netcomm.WithConnectTimeout(cfg.ConnectTimeout),
		netcomm.WithScanTimeout(cfg.ScanTimeout),
	)
	srv, err := commissioning.NewServer(commissioning.Config{
		Driver: driver,
		Logger: logger.With("component", "server"),
		Events: events,
	})
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Warn("error closing commissioning server", "error", err)
		}
	}()

	if cfg.Listen != "" {
		ln, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("listen: %w", err)
		}
		logger.Info("commissioning endpoint listening", "addr", ln.Addr().String())
		g.Go(func() error { return srv.Serve(gctx, ln) })
	}

	if cfg.Interactive {
		dev, err := interactive.New(srv, sim, networks)
		if err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
		// Route logs through readline so they don't clobber the prompt.
		output.Set(dev.Stderr())
		defer output.Set(os.Stderr)
		defer dev.Close()
		go dev.Run(gctx, cancel)
	}

	<-gctx.Done()
	logger.Info("shutting down")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openStore(cfg Config) (*persistence.ProvisionStore, error) {
	if cfg.StateDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	path := filepath.Join(cfg.StateDir, ProvisionFile)
	if cfg.DeviceSecret == "" {
		return persistence.NewProvisionStore(path), nil
	}
	return persistence.NewSealedProvisionStore(path, []byte(cfg.DeviceSecret))
}

// openEventLog returns the event sink for the configured event log. Events
// always reach the operational log at debug level.
func openEventLog(cfg Config, logger *slog.Logger) (log.Logger, func(), error) {
	adapter := log.NewSlogAdapter(logger.With("component", "events")).WithLevel(slog.LevelDebug)
	if cfg.EventLog == "" {
		return adapter, func() {}, nil
	}

	file, err := log.NewFileLogger(cfg.EventLog)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	logger.Info("recording commissioning events", "path", file.Path())

	closeFn := func() {
		if dropped := file.Dropped(); dropped > 0 {
			logger.Warn("event log dropped events", "count", dropped)
		}
		if err := file.Close(); err != nil {
			logger.Warn("error closing event log", "error", err)
		}
	}
	return log.NewMultiLogger(file, adapter), closeFn, nil
}

// logOutput is the log destination. It can be switched while in use.
type logOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *logOutput) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

// Set switches the destination.
func (o *logOutput) Set(w io.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.w = w
}
