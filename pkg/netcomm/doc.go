// Package netcomm implements network commissioning for a single-network
// mesh interface (Thread-style operational datasets).
//
// The Driver keeps two configuration slots, staged and saved. Commissioning
// commands (AddOrUpdateNetwork, RemoveNetwork, ReorderNetwork) only ever touch
// the staged slot; CommitConfiguration copies staged into saved and
// RevertConfiguration copies saved back into staged. Both slots are plain
// values: a NetworkConfig holds its dataset in a fixed-size array, so copying
// one slot into the other never shares storage.
//
// # Single Network Slot
//
// The interface supports exactly one active operational dataset. A dataset may
// be added when the staged slot is empty, or replace the staged dataset when
// both carry the same extended PAN ID. The network index is always 0.
//
// # Asynchronous Operations
//
// ConnectNetwork and ScanNetworks are forwarded to a StackManager, which
// performs attach and scan on its own goroutine. Every callback handed to the
// driver resolves exactly once:
//
//   - when the request fails before it reaches the stack (network ID mismatch,
//     submission error) the driver resolves it synchronously, before returning
//   - otherwise the stack resolves it later, and the driver never does
//
// Callbacks are wrapped with OnceConnect/OnceScan so a misbehaving stack
// cannot resolve a request twice. ConnectFuture and ScanFuture adapt the
// callbacks to a channel for callers that want to block with a context.
//
// # Concurrency
//
// The Driver does no locking. The commissioning layer must serialize all calls
// into it; see pkg/commissioning for the server that does so.
package netcomm
