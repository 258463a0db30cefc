// Package interactive provides the interactive command-line interface
// for the meshprov device.
package interactive

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/mash-protocol/meshprov/pkg/commissioning"
	"github.com/mash-protocol/meshprov/pkg/dataset"
	"github.com/mash-protocol/meshprov/pkg/netcomm"
	"github.com/mash-protocol/meshprov/pkg/stack"
)

// DefaultExpiry is the fail-safe expiry used by "arm" without arguments.
const DefaultExpiry = 60 * time.Second

// Device handles interactive mode for meshprov-device.
type Device struct {
	srv *commissioning.Server
	sim *stack.Simulator
	rl  *readline.Instance
	out io.Writer

	// Datasets known to the shell, by network name.
	datasets map[string][]byte
}

// New creates a new interactive device handler. networks are the simulated
// networks whose datasets the shell can refer to by name.
func New(srv *commissioning.Server, sim *stack.Simulator, networks []stack.Network) (*Device, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "meshprov> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	d := newDevice(srv, sim, networks, rl.Stdout())
	d.rl = rl
	return d, nil
}

func newDevice(srv *commissioning.Server, sim *stack.Simulator, networks []stack.Network, out io.Writer) *Device {
	d := &Device{
		srv:      srv,
		sim:      sim,
		out:      out,
		datasets: make(map[string][]byte),
	}
	for _, n := range networks {
		if raw, err := dataset.Encode(n.Dataset); err == nil {
			d.datasets[n.Dataset.NetworkName] = raw
		}
	}
	return d
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (d *Device) Stdout() io.Writer {
	return d.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (d *Device) Stderr() io.Writer {
	return d.rl.Stderr()
}

// Close releases the terminal.
func (d *Device) Close() error {
	return d.rl.Close()
}

// Run starts the interactive command loop.
func (d *Device) Run(ctx context.Context, cancel context.CancelFunc) {
	defer d.rl.Close()

	d.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := d.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(d.out, "Exiting...")
			cancel()
			return
		}

		if !d.Execute(ctx, line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns false when the shell should exit.
func (d *Device) Execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		d.printHelp()

	case "arm":
		d.cmdArm(args)

	case "gen":
		d.cmdGen(args)

	case "datasets", "ds":
		d.cmdDatasets()

	case "add":
		d.cmdAdd(args)

	case "remove", "rm":
		d.cmdRemove(args)

	case "reorder":
		d.cmdReorder(args)

	case "connect", "c":
		d.cmdConnect(ctx, args)

	case "scan", "s":
		d.cmdScan(ctx)

	case "commit", "complete":
		d.cmdComplete()

	case "revert":
		d.cmdRevert()

	case "networks", "n":
		d.cmdNetworks()

	case "status":
		d.cmdStatus()

	case "detach":
		d.sim.Detach()
		fmt.Fprintln(d.out, "Detached")

	case "reset":
		d.cmdReset()

	case "quit", "exit", "q":
		fmt.Fprintln(d.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(d.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (d *Device) printHelp() {
	fmt.Fprintln(d.out, `
Network Commissioning Commands:
  Fail-safe:
    arm [seconds] [breadcrumb] - Arm or extend the fail-safe (default 60s)
    revert                     - Expire the fail-safe and revert changes
    commit                     - Commit the configuration (CommissioningComplete)

  Configuration:
    gen <name> [channel]       - Generate a dataset and bring its network in reach
    datasets                   - List known datasets
    add <name|hex>             - Add or update the network from a dataset
    remove <network>           - Remove a network
    reorder <network> <index>  - Move a network to index
    connect <network>          - Attach to a network
    scan                       - Scan for networks

  Device:
    networks                   - List configured and reachable networks
    status                     - Show commissioning attributes
    detach                     - Drop the current attachment
    reset                      - Detach and forget the persisted provision

  General:
    help                       - Show this help
    quit                       - Exit device

  A <network> is a network name from "datasets" or an extended PAN ID in hex.`)
}

func (d *Device) cmdArm(args []string) {
	expiry := DefaultExpiry
	var breadcrumb uint64

	if len(args) > 0 {
		secs, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			fmt.Fprintf(d.out, "Invalid expiry: %s\n", args[0])
			return
		}
		expiry = time.Duration(secs) * time.Second
	}
	if len(args) > 1 {
		b, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			fmt.Fprintf(d.out, "Invalid breadcrumb: %s\n", args[1])
			return
		}
		breadcrumb = b
	}

	if err := d.srv.ArmFailSafe(expiry, breadcrumb); err != nil {
		fmt.Fprintf(d.out, "Error: %v\n", err)
		return
	}
	if expiry == 0 {
		fmt.Fprintln(d.out, "Fail-safe expired")
		return
	}
	fmt.Fprintf(d.out, "Fail-safe armed for %s\n", expiry)
}

func (d *Device) cmdGen(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(d.out, "Usage: gen <name> [channel]")
		return
	}
	channel := uint16(15)
	if len(args) > 1 {
		c, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil || c < dataset.MinChannel || c > dataset.MaxChannel {
			fmt.Fprintf(d.out, "Invalid channel: %s (use %d-%d)\n", args[1], dataset.MinChannel, dataset.MaxChannel)
			return
		}
		channel = uint16(c)
	}

	ds, err := dataset.Generate(args[0], channel)
	if err != nil {
		fmt.Fprintf(d.out, "Error: %v\n", err)
		return
	}
	raw, err := dataset.Encode(ds)
	if err != nil {
		fmt.Fprintf(d.out, "Error: %v\n", err)
		return
	}
	if err := d.sim.AddNetwork(stack.Network{Dataset: ds, RSSI: -60, LQI: 2}); err != nil {
		fmt.Fprintf(d.out, "Error: %v\n", err)
		return
	}
	d.datasets[ds.NetworkName] = raw

	fmt.Fprintf(d.out, "Generated %s\n", ds)
	fmt.Fprintf(d.out, "  Dataset: %s\n", hex.EncodeToString(raw))
}

func (d *Device) cmdDatasets() {
	if len(d.datasets) == 0 {
		fmt.Fprintln(d.out, "No datasets (use 'gen <name>')")
		return
	}
	names := make([]string, 0, len(d.datasets))
	for name := range d.datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ds, err := dataset.Decode(d.datasets[name])
		if err != nil {
			continue
		}
		fmt.Fprintf(d.out, "  %s\n", ds)
	}
}

func (d *Device) cmdAdd(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(d.out, "Usage: add <name|hex>")
		return
	}
	raw, ok := d.datasets[args[0]]
	if !ok {
		var err error
		if raw, err = hex.DecodeString(args[0]); err != nil {
			fmt.Fprintf(d.out, "Unknown dataset: %s\n", args[0])
			return
		}
	}

	result, err := d.srv.AddOrUpdateNetwork(raw)
	d.printConfigResult(result, err)
}

func (d *Device) cmdRemove(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(d.out, "Usage: remove <network>")
		return
	}
	id, ok := d.networkID(args[0])
	if !ok {
		return
	}
	result, err := d.srv.RemoveNetwork(id)
	d.printConfigResult(result, err)
}

func (d *Device) cmdReorder(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(d.out, "Usage: reorder <network> <index>")
		return
	}
	id, ok := d.networkID(args[0])
	if !ok {
		return
	}
	index, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		fmt.Fprintf(d.out, "Invalid index: %s\n", args[1])
		return
	}
	result, err := d.srv.ReorderNetwork(id, uint8(index))
	d.printConfigResult(result, err)
}

func (d *Device) cmdConnect(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(d.out, "Usage: connect <network>")
		return
	}
	id, ok := d.networkID(args[0])
	if !ok {
		return
	}

	fmt.Fprintf(d.out, "Connecting to %x...\n", id)
	result, err := d.srv.ConnectNetwork(ctx, id)
	if err != nil {
		fmt.Fprintf(d.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(d.out, "Connect: %s", result.Status)
	if result.DebugText != "" {
		fmt.Fprintf(d.out, " (%s)", result.DebugText)
	}
	if result.ConnectError != 0 {
		fmt.Fprintf(d.out, " error=%d", result.ConnectError)
	}
	fmt.Fprintln(d.out)
}

func (d *Device) cmdScan(ctx context.Context) {
	fmt.Fprintln(d.out, "Scanning...")
	result, err := d.srv.ScanNetworks(ctx)
	if err != nil {
		fmt.Fprintf(d.out, "Error: %v\n", err)
		return
	}
	if result.Status != netcomm.StatusSuccess {
		fmt.Fprintf(d.out, "Scan: %s %s\n", result.Status, result.DebugText)
		return
	}
	if len(result.Networks) == 0 {
		fmt.Fprintln(d.out, "No networks found")
		return
	}

	fmt.Fprintf(d.out, "%-16s %-16s %-6s %-7s %-5s %s\n", "NAME", "XPANID", "PANID", "CHANNEL", "RSSI", "LQI")
	for _, n := range result.Networks {
		fmt.Fprintf(d.out, "%-16s %-16s 0x%04x %-7d %-5d %d\n",
			n.NetworkName, n.ExtendedPANID, n.PANID, n.Channel, n.RSSI, n.LQI)
	}
}

func (d *Device) cmdComplete() {
	if err := d.srv.CommissioningComplete(); err != nil {
		fmt.Fprintf(d.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(d.out, "Configuration committed")
}

func (d *Device) cmdRevert() {
	if !d.srv.FailSafe().IsArmed() {
		fmt.Fprintln(d.out, "Fail-safe not armed")
		return
	}
	if err := d.srv.ArmFailSafe(0, 0); err != nil {
		fmt.Fprintf(d.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(d.out, "Configuration reverted")
}

func (d *Device) cmdNetworks() {
	attrs := d.srv.Attributes()

	fmt.Fprintf(d.out, "Configured (%d/%d):\n", len(attrs.Networks), attrs.MaxNetworks)
	if len(attrs.Networks) == 0 {
		fmt.Fprintln(d.out, "  (none)")
	}
	for i, n := range attrs.Networks {
		state := "not connected"
		if n.Connected {
			state = "connected"
		}
		fmt.Fprintf(d.out, "  [%d] %x  %s\n", i, n.NetworkID, state)
	}

	reachable := d.sim.Networks()
	sort.Slice(reachable, func(i, j int) bool {
		return reachable[i].NetworkName < reachable[j].NetworkName
	})
	fmt.Fprintf(d.out, "In reach (%d):\n", len(reachable))
	for _, n := range reachable {
		fmt.Fprintf(d.out, "  %-16s %s channel %d\n", n.NetworkName, n.ExtendedPANID, n.Channel)
	}
}

func (d *Device) cmdStatus() {
	attrs := d.srv.Attributes()

	fmt.Fprintln(d.out, "Commissioning Status:")
	fmt.Fprintf(d.out, "  Stack:           %s\n", d.sim.State())
	fmt.Fprintf(d.out, "  Fail-safe:       %s", attrs.FailSafe)
	if d.srv.FailSafe().IsArmed() {
		fmt.Fprintf(d.out, " (%s left)", d.srv.FailSafe().Remaining().Round(time.Second))
	}
	fmt.Fprintln(d.out)
	fmt.Fprintf(d.out, "  Breadcrumb:      %d\n", attrs.Breadcrumb)
	fmt.Fprintf(d.out, "  Interface:       %t\n", attrs.InterfaceEnabled)
	fmt.Fprintf(d.out, "  Networks:        %d/%d\n", len(attrs.Networks), attrs.MaxNetworks)
	fmt.Fprintf(d.out, "  Scan timeout:    %ds\n", attrs.ScanMaxTimeSeconds)
	fmt.Fprintf(d.out, "  Connect timeout: %ds\n", attrs.ConnectMaxTimeSeconds)

	if attrs.LastNetworkingStatus != nil {
		fmt.Fprintf(d.out, "  Last status:     %s\n", *attrs.LastNetworkingStatus)
	}
	if len(attrs.LastNetworkID) > 0 {
		fmt.Fprintf(d.out, "  Last network:    %x\n", attrs.LastNetworkID)
	}
	if attrs.LastConnectErrorValue != nil {
		fmt.Fprintf(d.out, "  Last error:      %d\n", *attrs.LastConnectErrorValue)
	}
}

func (d *Device) cmdReset() {
	if err := d.sim.Reset(); err != nil {
		fmt.Fprintf(d.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(d.out, "Provision cleared")
}

// networkID resolves a network name or hex extended PAN ID.
func (d *Device) networkID(arg string) ([]byte, bool) {
	if raw, ok := d.datasets[arg]; ok {
		xp, err := dataset.Parser{}.ExtendedPANID(raw)
		if err == nil {
			return xp.Bytes(), true
		}
	}
	id, err := hex.DecodeString(arg)
	if err != nil {
		fmt.Fprintf(d.out, "Invalid network: %s\n", arg)
		return nil, false
	}
	return id, true
}

func (d *Device) printConfigResult(result commissioning.NetworkConfigResult, err error) {
	if err != nil {
		fmt.Fprintf(d.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(d.out, "Result: %s", result.Status)
	if result.NetworkIndex != nil {
		fmt.Fprintf(d.out, " (index %d)", *result.NetworkIndex)
	}
	fmt.Fprintln(d.out)
}
