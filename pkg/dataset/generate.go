package dataset

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Defaults applied by Generate.
const (
	DefaultChannelMask   = 0x07fff800 // channels 11-26
	DefaultRotationHours = 672
	DefaultPolicyFlags   = 0x02ff
)

// Generate creates a commissioned dataset for a new network with random
// identifiers and key material.
func Generate(name string, channel uint16) (*Dataset, error) {
	var random [2 + 8 + 7 + NetworkKeyLength + PSKcLength]byte
	if _, err := rand.Read(random[:]); err != nil {
		return nil, fmt.Errorf("generate dataset: %w", err)
	}

	// 0xffff is reserved.
	panid := binary.BigEndian.Uint16(random[0:2]) % 0xffff
	mlp := append([]byte{0xfd}, random[10:17]...)

	d := &Dataset{
		ActiveTimestamp: 1,
		Channel:         &channel,
		ChannelMask:     DefaultChannelMask,
		PANID:           &panid,
		ExtendedPANID:   append([]byte(nil), random[2:10]...),
		NetworkName:     name,
		MeshLocalPrefix: mlp,
		NetworkKey:      append([]byte(nil), random[17:17+NetworkKeyLength]...),
		PSKc:            append([]byte(nil), random[17+NetworkKeyLength:]...),
		SecurityPolicy: &SecurityPolicy{
			RotationHours: DefaultRotationHours,
			Flags:         DefaultPolicyFlags,
		},
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
