package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/meshprov/pkg/dataset"
	"github.com/mash-protocol/meshprov/pkg/netcomm"
	"github.com/mash-protocol/meshprov/pkg/stack"
	"github.com/mash-protocol/meshprov/pkg/version"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MESHPROV_"

// Config holds the device configuration.
//
// Values are applied in order: defaults, config file, environment, then
// flags given explicitly on the command line.
type Config struct {
	// Version is the config file format version.
	Version string `yaml:"version" env:"VERSION"`

	ConfigFile  string `yaml:"-"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	Interactive bool   `yaml:"interactive" env:"INTERACTIVE"`

	// Listen is the TCP address of the commissioning endpoint. Empty
	// disables it.
	Listen string `yaml:"listen" env:"LISTEN"`

	// StateDir holds the provision file. Empty keeps the provision in
	// memory.
	StateDir string `yaml:"state_dir" env:"STATE_DIR"`

	// DeviceSecret seals the provision file when set.
	DeviceSecret string `yaml:"device_secret" env:"DEVICE_SECRET"`

	// EventLog is the path of the .mlog commissioning event log.
	EventLog string `yaml:"event_log" env:"EVENT_LOG"`

	// Reset clears the persisted provision before starting.
	Reset bool `yaml:"-"`

	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
	ScanTimeout    time.Duration `yaml:"scan_timeout" env:"SCAN_TIMEOUT"`

	// MDNS scans for border agents instead of reporting simulated networks.
	MDNS          bool          `yaml:"mdns" env:"MDNS"`
	MDNSInterface string        `yaml:"mdns_interface" env:"MDNS_INTERFACE"`
	BrowseTimeout time.Duration `yaml:"browse_timeout" env:"BROWSE_TIMEOUT"`

	Backoff stack.BackoffConfig `yaml:"backoff"`

	// Networks are the networks within reach of the simulated radio.
	Networks []NetworkConfig `yaml:"networks"`
}

// NetworkConfig describes one simulated network.
type NetworkConfig struct {
	Name    string `yaml:"name"`
	Channel uint16 `yaml:"channel"`

	// Dataset is a hex-encoded dataset. When empty a random one is
	// generated for Name and Channel.
	Dataset string `yaml:"dataset"`

	RSSI         int8  `yaml:"rssi"`
	LQI          uint8 `yaml:"lqi"`
	JoinAttempts int   `yaml:"join_attempts"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Version:        version.Current,
		LogLevel:       "info",
		ConnectTimeout: netcomm.DefaultConnectNetworkTimeout,
		ScanTimeout:    netcomm.DefaultScanNetworkTimeout,
		Networks: []NetworkConfig{
			{Name: "meshprov-home", Channel: 15, RSSI: -52, LQI: 3},
		},
	}
}

// LoadConfig builds the configuration from args, the config file they name
// and the MESHPROV_* environment.
func LoadConfig(args []string, environ map[string]string) (Config, error) {
	cfg := DefaultConfig()

	var flags Config
	fs := flag.NewFlagSet("meshprov-device", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	fs.StringVar(&flags.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&flags.Interactive, "interactive", false, "Enable interactive command mode")
	fs.StringVar(&flags.Listen, "listen", "", "Commissioning endpoint address (e.g. :5540)")
	fs.StringVar(&flags.StateDir, "state-dir", "", "Directory for persistent state")
	fs.StringVar(&flags.DeviceSecret, "device-secret", "", "Secret sealing the provision file")
	fs.StringVar(&flags.EventLog, "event-log", "", "Commissioning event log file (.mlog)")
	fs.BoolVar(&flags.Reset, "reset", false, "Clear the persisted provision before starting")
	fs.DurationVar(&flags.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "Attach timeout")
	fs.DurationVar(&flags.ScanTimeout, "scan-timeout", cfg.ScanTimeout, "Scan timeout")
	fs.BoolVar(&flags.MDNS, "mdns", false, "Scan for border agents over mDNS")
	fs.StringVar(&flags.MDNSInterface, "mdns-interface", "", "Network interface for mDNS browsing")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(fs)
		}
		return cfg, err
	}

	if flags.ConfigFile != "" {
		if err := loadConfigFile(flags.ConfigFile, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}

	// Only flags present on the command line override file and environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "config":
			cfg.ConfigFile = flags.ConfigFile
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "interactive":
			cfg.Interactive = flags.Interactive
		case "listen":
			cfg.Listen = flags.Listen
		case "state-dir":
			cfg.StateDir = flags.StateDir
		case "device-secret":
			cfg.DeviceSecret = flags.DeviceSecret
		case "event-log":
			cfg.EventLog = flags.EventLog
		case "reset":
			cfg.Reset = flags.Reset
		case "connect-timeout":
			cfg.ConnectTimeout = flags.ConnectTimeout
		case "scan-timeout":
			cfg.ScanTimeout = flags.ScanTimeout
		case "mdns":
			cfg.MDNS = flags.MDNS
		case "mdns-interface":
			cfg.MDNSInterface = flags.MDNSInterface
		}
	})

	return cfg, cfg.Validate()
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := version.Check(c.Version); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ConnectTimeout <= 0 || c.ScanTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	for i, n := range c.Networks {
		if n.Dataset != "" {
			if _, err := hex.DecodeString(n.Dataset); err != nil {
				return fmt.Errorf("network %d: invalid dataset: %w", i, err)
			}
			continue
		}
		if n.Name == "" {
			return fmt.Errorf("network %d: name or dataset required", i)
		}
		if n.Channel < dataset.MinChannel || n.Channel > dataset.MaxChannel {
			return fmt.Errorf("network %q: channel must be %d-%d, got %d",
				n.Name, dataset.MinChannel, dataset.MaxChannel, n.Channel)
		}
	}
	return nil
}

// SimulatedNetworks builds the simulator's reachable networks.
func (c *Config) SimulatedNetworks() ([]stack.Network, error) {
	networks := make([]stack.Network, 0, len(c.Networks))
	for _, n := range c.Networks {
		var ds *dataset.Dataset
		if n.Dataset != "" {
			raw, err := hex.DecodeString(n.Dataset)
			if err != nil {
				return nil, err
			}
			if ds, err = dataset.Decode(raw); err != nil {
				return nil, fmt.Errorf("network %q: %w", n.Name, err)
			}
		} else {
			var err error
			if ds, err = dataset.Generate(n.Name, n.Channel); err != nil {
				return nil, err
			}
		}
		networks = append(networks, stack.Network{
			Dataset:      ds,
			RSSI:         n.RSSI,
			LQI:          n.LQI,
			JoinAttempts: n.JoinAttempts,
		})
	}
	return networks, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (use: debug, info, warn, error)", s)
	}
}

func printUsage(fs *flag.FlagSet) {
	fs.SetOutput(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage: meshprov-device [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEvery setting can also be given as %s<NAME> (e.g. %sLOG_LEVEL).\n", EnvPrefix, EnvPrefix)
}
