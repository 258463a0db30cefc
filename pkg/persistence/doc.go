// Package persistence stores the operational dataset a device is attached
// with so it survives restarts.
//
// The dataset is written inside a CBOR envelope carrying the format version
// and save time. When a device secret is configured the dataset is sealed with
// ChaCha20-Poly1305 under a key derived from the secret with HKDF-SHA256, so
// network credentials are never written in the clear.
package persistence
