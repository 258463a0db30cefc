package dataset

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/mash-protocol/meshprov/pkg/netcomm"
)

// Field sizes.
const (
	NetworkKeyLength      = 16
	PSKcLength            = 16
	MeshLocalPrefixLength = 8
	MaxNetworkNameLength  = 16
)

// Channel range of the 2.4 GHz O-QPSK PHY.
const (
	MinChannel = 11
	MaxChannel = 26
)

// Dataset errors.
var (
	ErrTooLong      = errors.New("dataset exceeds maximum length")
	ErrInvalidField = errors.New("invalid dataset field")
	ErrMissingField = errors.New("dataset field missing")
)

// SecurityPolicy controls key rotation and the features a network allows.
type SecurityPolicy struct {
	RotationHours uint16 `cbor:"1,keyasint"`
	Flags         uint16 `cbor:"2,keyasint"`
}

// Dataset is an operational dataset. Optional fields are nil or empty when
// absent.
type Dataset struct {
	ActiveTimestamp uint64          `cbor:"1,keyasint,omitempty"`
	Channel         *uint16         `cbor:"2,keyasint,omitempty"`
	ChannelMask     uint32          `cbor:"3,keyasint,omitempty"`
	PANID           *uint16         `cbor:"4,keyasint,omitempty"`
	ExtendedPANID   []byte          `cbor:"5,keyasint,omitempty"`
	NetworkName     string          `cbor:"6,keyasint,omitempty"`
	MeshLocalPrefix []byte          `cbor:"7,keyasint,omitempty"`
	NetworkKey      []byte          `cbor:"8,keyasint,omitempty"`
	PSKc            []byte          `cbor:"9,keyasint,omitempty"`
	SecurityPolicy  *SecurityPolicy `cbor:"10,keyasint,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create dataset CBOR encoder mode: %v", err))
	}

	// Datasets are credentials, so the decoder is strict.
	decMode, err = cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		IndefLength:     cbor.IndefLengthForbidden,
		MaxNestedLevels: 4,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create dataset CBOR decoder mode: %v", err))
	}
}

// Encode validates d and encodes it.
func Encode(d *Dataset) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	data, err := encMode.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	if len(data) > netcomm.MaxDatasetLength {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLong, len(data), netcomm.MaxDatasetLength)
	}
	return data, nil
}

// Decode decodes and validates a dataset blob.
func Decode(data []byte) (*Dataset, error) {
	if len(data) > netcomm.MaxDatasetLength {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLong, len(data), netcomm.MaxDatasetLength)
	}
	var d Dataset
	if err := decMode.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the size and range of every field that is present.
func (d *Dataset) Validate() error {
	if d.Channel != nil && (*d.Channel < MinChannel || *d.Channel > MaxChannel) {
		return fmt.Errorf("%w: channel %d", ErrInvalidField, *d.Channel)
	}
	if d.PANID != nil && *d.PANID == 0xFFFF {
		return fmt.Errorf("%w: PAN ID 0xffff is reserved", ErrInvalidField)
	}
	if err := checkLen("extended PAN ID", d.ExtendedPANID, netcomm.ExtendedPANIDLength); err != nil {
		return err
	}
	if err := checkLen("mesh-local prefix", d.MeshLocalPrefix, MeshLocalPrefixLength); err != nil {
		return err
	}
	if err := checkLen("network key", d.NetworkKey, NetworkKeyLength); err != nil {
		return err
	}
	if err := checkLen("PSKc", d.PSKc, PSKcLength); err != nil {
		return err
	}
	if len(d.NetworkName) > MaxNetworkNameLength {
		return fmt.Errorf("%w: network name longer than %d bytes", ErrInvalidField, MaxNetworkNameLength)
	}
	return nil
}

func checkLen(name string, b []byte, want int) error {
	if len(b) != 0 && len(b) != want {
		return fmt.Errorf("%w: %s must be %d bytes, got %d", ErrInvalidField, name, want, len(b))
	}
	return nil
}

// IsCommissioned returns true if the dataset has everything needed to attach:
// channel, PAN ID, extended PAN ID and network key.
func (d *Dataset) IsCommissioned() bool {
	return d.Channel != nil &&
		d.PANID != nil &&
		len(d.ExtendedPANID) == netcomm.ExtendedPANIDLength &&
		len(d.NetworkKey) == NetworkKeyLength
}

// XPANID returns the extended PAN ID.
func (d *Dataset) XPANID() (netcomm.ExtendedPANID, error) {
	var x netcomm.ExtendedPANID
	if len(d.ExtendedPANID) != netcomm.ExtendedPANIDLength {
		return x, fmt.Errorf("%w: extended PAN ID", ErrMissingField)
	}
	copy(x[:], d.ExtendedPANID)
	return x, nil
}

// String returns a summary without key material.
func (d *Dataset) String() string {
	channel, panid := "-", "-"
	if d.Channel != nil {
		channel = fmt.Sprintf("%d", *d.Channel)
	}
	if d.PANID != nil {
		panid = fmt.Sprintf("0x%04x", *d.PANID)
	}
	return fmt.Sprintf("name=%q xpanid=%s panid=%s channel=%s",
		d.NetworkName, hex.EncodeToString(d.ExtendedPANID), panid, channel)
}

// Parser implements netcomm.DatasetParser for this format.
type Parser struct{}

// Validate reports whether raw is a commissioned dataset.
func (Parser) Validate(raw []byte) (bool, error) {
	d, err := Decode(raw)
	if err != nil {
		return false, err
	}
	return d.IsCommissioned(), nil
}

// ExtendedPANID returns the extended PAN ID in raw.
func (Parser) ExtendedPANID(raw []byte) (netcomm.ExtendedPANID, error) {
	d, err := Decode(raw)
	if err != nil {
		return netcomm.ExtendedPANID{}, err
	}
	return d.XPANID()
}

var _ netcomm.DatasetParser = Parser{}
