package netcomm

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
)

// Dataset limits.
const (
	// MaxDatasetLength is the maximum size of an operational dataset blob.
	MaxDatasetLength = 254

	// ExtendedPANIDLength is the size of an extended PAN ID.
	ExtendedPANIDLength = 8
)

// NetworkConfig errors.
var (
	ErrDatasetTooLong  = errors.New("operational dataset exceeds maximum length")
	ErrNotCommissioned = errors.New("operational dataset not commissioned")
	ErrNoParser        = errors.New("no dataset parser configured")
)

// ExtendedPANID identifies a mesh network instance. It is the network ID used
// by the commissioning commands.
type ExtendedPANID [ExtendedPANIDLength]byte

// String returns the extended PAN ID as 16 lower-case hex characters.
func (x ExtendedPANID) String() string {
	return hex.EncodeToString(x[:])
}

// Bytes returns a copy of the extended PAN ID as a slice.
func (x ExtendedPANID) Bytes() []byte {
	b := make([]byte, ExtendedPANIDLength)
	copy(b, x[:])
	return b
}

// ParseExtendedPANID parses 16 hex characters into an ExtendedPANID.
func ParseExtendedPANID(s string) (ExtendedPANID, error) {
	var x ExtendedPANID
	b, err := hex.DecodeString(s)
	if err != nil {
		return x, fmt.Errorf("invalid extended PAN ID %q: %w", s, err)
	}
	if len(b) != ExtendedPANIDLength {
		return x, fmt.Errorf("invalid extended PAN ID %q: want %d bytes, got %d", s, ExtendedPANIDLength, len(b))
	}
	copy(x[:], b)
	return x, nil
}

// DatasetParser is the operational dataset component. The driver never
// interprets dataset bytes itself; it only asks the parser whether a blob is
// a complete dataset and which network it belongs to.
type DatasetParser interface {
	// Validate parses raw and reports whether it holds a commissioned dataset.
	// An error means raw could not be parsed at all.
	Validate(raw []byte) (commissioned bool, err error)

	// ExtendedPANID derives the extended PAN ID from raw.
	ExtendedPANID(raw []byte) (ExtendedPANID, error)
}

// NetworkConfig is one configuration slot: an opaque dataset blob plus its
// commissioned flag. The blob lives in a fixed-size array so assigning one
// NetworkConfig to another copies the bytes; slots never share storage.
// The zero value (with a parser set via NewNetworkConfig) is uncommissioned.
type NetworkConfig struct {
	parser       DatasetParser
	data         [MaxDatasetLength]byte
	length       int
	commissioned bool
}

// NewNetworkConfig returns an empty, uncommissioned configuration that uses
// parser to interpret datasets.
func NewNetworkConfig(parser DatasetParser) NetworkConfig {
	return NetworkConfig{parser: parser}
}

// Init replaces the configuration with raw. commissioned is only ever set from
// the parser's verdict; on any error the configuration is left cleared.
func (c *NetworkConfig) Init(raw []byte) error {
	c.Clear()

	if c.parser == nil {
		return ErrNoParser
	}
	if len(raw) > MaxDatasetLength {
		return fmt.Errorf("%w: %d > %d", ErrDatasetTooLong, len(raw), MaxDatasetLength)
	}

	commissioned, err := c.parser.Validate(raw)
	if err != nil {
		return fmt.Errorf("invalid operational dataset: %w", err)
	}

	c.length = copy(c.data[:], raw)
	c.commissioned = commissioned
	return nil
}

// Clear resets the configuration to the uncommissioned default.
// The parser is kept.
func (c *NetworkConfig) Clear() {
	c.data = [MaxDatasetLength]byte{}
	c.length = 0
	c.commissioned = false
}

// IsCommissioned returns true if the blob holds a valid, complete dataset.
func (c NetworkConfig) IsCommissioned() bool {
	return c.commissioned
}

// Len returns the dataset length in bytes.
func (c NetworkConfig) Len() int {
	return c.length
}

// AsBytes returns a copy of the dataset blob.
func (c NetworkConfig) AsBytes() []byte {
	b := make([]byte, c.length)
	copy(b, c.data[:c.length])
	return b
}

// ExtendedPANID derives the extended PAN ID from the blob. It is recomputed on
// every call. Returns ErrNotCommissioned for an uncommissioned configuration
// and a wrapped parser error for a blob the parser cannot derive it from.
func (c NetworkConfig) ExtendedPANID() (ExtendedPANID, error) {
	if !c.commissioned {
		return ExtendedPANID{}, ErrNotCommissioned
	}
	if c.parser == nil {
		return ExtendedPANID{}, ErrNoParser
	}
	x, err := c.parser.ExtendedPANID(c.data[:c.length])
	if err != nil {
		return ExtendedPANID{}, fmt.Errorf("derive extended PAN ID: %w", err)
	}
	return x, nil
}

// Equal reports whether both configurations hold the same blob and state.
func (c NetworkConfig) Equal(other NetworkConfig) bool {
	return c.commissioned == other.commissioned &&
		bytes.Equal(c.data[:c.length], other.data[:other.length])
}

// describe returns a short human-readable state for event logging.
func (c NetworkConfig) describe() string {
	if !c.commissioned {
		return "UNCOMMISSIONED"
	}
	x, err := c.ExtendedPANID()
	if err != nil {
		return "COMMISSIONED(?)"
	}
	return x.String()
}
