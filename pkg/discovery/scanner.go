package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"

	"github.com/mash-protocol/meshprov/pkg/netcomm"
)

// Scanner lists the mesh networks currently visible to the device.
type Scanner interface {
	// Scan blocks until the networks have been collected or ctx is done.
	// Results are returned in discovery order.
	Scan(ctx context.Context) ([]netcomm.ScanResponse, error)
}

// StaticScanner returns a fixed list of networks.
type StaticScanner struct {
	mu       sync.RWMutex
	networks []netcomm.ScanResponse
}

// NewStaticScanner creates a scanner that reports networks.
func NewStaticScanner(networks ...netcomm.ScanResponse) *StaticScanner {
	return &StaticScanner{networks: slices.Clone(networks)}
}

// Set replaces the reported networks.
func (s *StaticScanner) Set(networks ...netcomm.ScanResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.networks = slices.Clone(networks)
}

// Scan returns the configured networks.
func (s *StaticScanner) Scan(ctx context.Context) ([]netcomm.ScanResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.networks), nil
}

// BrowseFunc streams service entries for service into entries and removed
// until ctx is done.
type BrowseFunc func(ctx context.Context, service string, entries, removed chan *zeroconf.ServiceEntry) error

// MDNSConfig configures an MDNSScanner.
type MDNSConfig struct {
	// Interface restricts browsing to one network interface. Empty browses
	// all multicast interfaces.
	Interface string

	// Timeout is the browse window of a scan. Zero uses BrowseTimeout.
	Timeout time.Duration

	// Logger receives browse diagnostics. Nil disables logging.
	Logger *slog.Logger

	// Browse overrides the mDNS browser. Nil uses zeroconf.
	Browse BrowseFunc
}

// MDNSScanner finds mesh networks by browsing for border agents.
type MDNSScanner struct {
	config MDNSConfig
	logger *slog.Logger
}

// NewMDNSScanner creates a new mDNS scanner.
func NewMDNSScanner(config MDNSConfig) *MDNSScanner {
	if config.Timeout <= 0 {
		config.Timeout = BrowseTimeout
	}
	s := &MDNSScanner{config: config, logger: config.Logger}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.config.Browse == nil {
		s.config.Browse = s.zeroconfBrowse
	}
	return s
}

// Scan browses for the configured window and returns one result per mesh
// network. Several border agents serving the same network collapse into the
// first one seen.
func (s *MDNSScanner) Scan(ctx context.Context) ([]netcomm.ScanResponse, error) {
	agents, err := s.BrowseBorderAgents(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[netcomm.ExtendedPANID]bool, len(agents))
	results := make([]netcomm.ScanResponse, 0, len(agents))
	for _, agent := range agents {
		if seen[agent.ExtendedPANID] {
			continue
		}
		seen[agent.ExtendedPANID] = true
		results = append(results, agent.ScanResponse())
	}
	return results, nil
}

// BrowseBorderAgents browses for the configured window and returns the border
// agents still present when it closes.
// Services are aggregated by instance name - addresses from multiple interfaces
// are combined into a single entry. Removals are handled when interfaces disappear.
func (s *MDNSScanner) BrowseBorderAgents(ctx context.Context) ([]*BorderAgent, error) {
	browseCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	browseDone := make(chan error, 1)
	go func() {
		browseDone <- s.config.Browse(browseCtx, ServiceTypeMeshCoP, entries, removed)
	}()

	// Track agents by instance name, keeping discovery order
	agents := make(map[string]*BorderAgent)
	var order []string

loop:
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			agent := entryToBorderAgent(entry)
			if agent == nil {
				s.logger.Debug("ignoring border agent with invalid TXT record", "instance", entry.Instance)
				continue
			}
			if existing, found := agents[agent.InstanceName]; found {
				// Merge addresses into existing entry
				existing.Addresses = mergeAddresses(existing.Addresses, agent.Addresses)
				continue
			}
			agents[agent.InstanceName] = agent
			order = append(order, agent.InstanceName)
			s.logger.Debug("border agent found",
				"instance", agent.InstanceName,
				"network", agent.NetworkName,
				"xpanid", agent.ExtendedPANID.String())

		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			// Remove addresses that came from this interface
			if existing, found := agents[entry.Instance]; found {
				existing.Addresses = removeAddresses(existing.Addresses, entry)
				// If no addresses remain, remove the agent
				if len(existing.Addresses) == 0 {
					delete(agents, entry.Instance)
				}
			}

		case err := <-browseDone:
			if err != nil && browseCtx.Err() == nil {
				return nil, fmt.Errorf("browse %s: %w", ServiceTypeMeshCoP, err)
			}
			break loop

		case <-browseCtx.Done():
			break loop
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]*BorderAgent, 0, len(agents))
	for _, name := range order {
		if agent, ok := agents[name]; ok {
			result = append(result, agent)
		}
	}
	return result, nil
}

// zeroconfBrowse browses with the zeroconf client.
func (s *MDNSScanner) zeroconfBrowse(ctx context.Context, service string, entries, removed chan *zeroconf.ServiceEntry) error {
	return zeroconf.Browse(ctx, service, Domain, entries, removed, s.browserOptions()...)
}

// browserOptions returns zeroconf client options based on config.
func (s *MDNSScanner) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	// Select specific interface if configured
	if s.config.Interface != "" {
		iface, err := net.InterfaceByName(s.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		} else {
			s.logger.Warn("mDNS interface not found, browsing all interfaces",
				"interface", s.config.Interface, "error", err)
		}
	}

	return opts
}

// entryToBorderAgent converts a zeroconf entry to a BorderAgent.
func entryToBorderAgent(entry *zeroconf.ServiceEntry) *BorderAgent {
	txt := StringsToTXTRecords(entry.Text)
	info, err := DecodeBorderAgentTXT(txt)
	if err != nil {
		return nil
	}

	return &BorderAgent{
		InstanceName:    entry.Instance,
		Host:            entry.HostName,
		Port:            uint16(entry.Port),
		Addresses:       entryAddresses(entry),
		NetworkName:     info.NetworkName,
		ExtendedPANID:   info.ExtendedPANID,
		ExtendedAddress: info.ExtendedAddress,
		Version:         info.Version,
		StateBitmap:     info.StateBitmap,
	}
}

func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes addresses from a zeroconf entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, addr := range entryAddresses(entry) {
		toRemove[addr] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Ensure scanners implement the Scanner interface.
var (
	_ Scanner = (*MDNSScanner)(nil)
	_ Scanner = (*StaticScanner)(nil)
)
