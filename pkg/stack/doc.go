// Package stack provides a simulated mesh stack implementing
// netcomm.StackManager.
//
// The Simulator keeps a set of reachable networks, each described by an
// operational dataset. Attach requests are queued and processed by a worker
// goroutine: the worker looks for the requested network and retries with
// exponential backoff until the connect timeout, so networks that need a few
// join attempts or appear late are still found. A successful attach persists
// the dataset in a persistence.ProvisionStore, making the attachment survive
// a restart (see Restore).
//
// Scans are processed by a second worker and delegate to a discovery.Scanner.
// Without one, the reachable networks are reported.
//
// Every accepted request is answered exactly once, including requests still
// queued when Run returns.
package stack
