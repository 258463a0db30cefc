package netcomm_test

import (
	"bytes"
	"errors"
	"sync"

	"github.com/mash-protocol/meshprov/pkg/log"
	"github.com/mash-protocol/meshprov/pkg/netcomm"
)

// Test dataset layout: marker byte, 8 bytes extended PAN ID, optional payload.
const (
	markerCommissioned   = 0xC0
	markerUncommissioned = 0x00
)

var errMalformed = errors.New("malformed test dataset")

// testParser interprets the test dataset layout.
type testParser struct{}

func (testParser) Validate(raw []byte) (bool, error) {
	if len(raw) < 1+netcomm.ExtendedPANIDLength {
		return false, errMalformed
	}
	switch raw[0] {
	case markerCommissioned:
		return true, nil
	case markerUncommissioned:
		return false, nil
	default:
		return false, errMalformed
	}
}

func (testParser) ExtendedPANID(raw []byte) (netcomm.ExtendedPANID, error) {
	var x netcomm.ExtendedPANID
	if len(raw) < 1+netcomm.ExtendedPANIDLength {
		return x, errMalformed
	}
	copy(x[:], raw[1:1+netcomm.ExtendedPANIDLength])
	return x, nil
}

// xpanid returns an extended PAN ID filled with b.
func xpanid(b byte) []byte {
	return bytes.Repeat([]byte{b}, netcomm.ExtendedPANIDLength)
}

// dataset returns a commissioned test dataset for xpanid(b) followed by payload.
func dataset(b byte, payload ...byte) []byte {
	raw := append([]byte{markerCommissioned}, xpanid(b)...)
	return append(raw, payload...)
}

// partialDataset returns a parseable but uncommissioned test dataset.
func partialDataset(b byte) []byte {
	return append([]byte{markerUncommissioned}, xpanid(b)...)
}

// recordingLogger captures commissioning events.
type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(event log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingLogger) Events() []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]log.Event(nil), r.events...)
}

// byOperation returns the events for op.
func (r *recordingLogger) byOperation(op log.Operation) []log.Event {
	var out []log.Event
	for _, e := range r.Events() {
		if e.Operation == op {
			out = append(out, e)
		}
	}
	return out
}
