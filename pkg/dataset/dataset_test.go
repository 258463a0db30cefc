package dataset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/meshprov/pkg/netcomm"
)

func ptr[T any](v T) *T { return &v }

func testDataset() *Dataset {
	return &Dataset{
		ActiveTimestamp: 1,
		Channel:         ptr(uint16(15)),
		PANID:           ptr(uint16(0x1234)),
		ExtendedPANID:   []byte{0xde, 0xad, 0x00, 0xbe, 0xef, 0x00, 0xca, 0xfe},
		NetworkName:     "meshprov-test",
		NetworkKey:      bytes.Repeat([]byte{0x42}, NetworkKeyLength),
	}
}

func TestEncodeDecode(t *testing.T) {
	d := testDataset()
	raw, err := Encode(d)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(raw), netcomm.MaxDatasetLength)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, d, got)
	assert.True(t, got.IsCommissioned())
}

func TestEncodeIsDeterministic(t *testing.T) {
	a, err := Encode(testDataset())
	require.NoError(t, err)
	b, err := Encode(testDataset())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIsCommissioned(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Dataset)
		want   bool
	}{
		{"complete", func(*Dataset) {}, true},
		{"no channel", func(d *Dataset) { d.Channel = nil }, false},
		{"no PAN ID", func(d *Dataset) { d.PANID = nil }, false},
		{"no extended PAN ID", func(d *Dataset) { d.ExtendedPANID = nil }, false},
		{"no network key", func(d *Dataset) { d.NetworkKey = nil }, false},
		{"no name", func(d *Dataset) { d.NetworkName = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDataset()
			tt.mutate(d)
			assert.Equal(t, tt.want, d.IsCommissioned())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Dataset)
	}{
		{"channel too low", func(d *Dataset) { d.Channel = ptr(uint16(10)) }},
		{"channel too high", func(d *Dataset) { d.Channel = ptr(uint16(27)) }},
		{"broadcast PAN ID", func(d *Dataset) { d.PANID = ptr(uint16(0xFFFF)) }},
		{"short extended PAN ID", func(d *Dataset) { d.ExtendedPANID = []byte{1, 2, 3} }},
		{"short network key", func(d *Dataset) { d.NetworkKey = []byte{1} }},
		{"long mesh-local prefix", func(d *Dataset) { d.MeshLocalPrefix = make([]byte, 9) }},
		{"short PSKc", func(d *Dataset) { d.PSKc = make([]byte, 4) }},
		{"long name", func(d *Dataset) { d.NetworkName = "a-network-name-that-is-too-long" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDataset()
			tt.mutate(d)
			assert.ErrorIs(t, d.Validate(), ErrInvalidField)
			_, err := Encode(d)
			assert.ErrorIs(t, err, ErrInvalidField)
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode(make([]byte, netcomm.MaxDatasetLength+1))
	assert.ErrorIs(t, err, ErrTooLong)

	_, err = Decode([]byte{0xff, 0x00})
	assert.Error(t, err)

	// A map whose extended PAN ID is the wrong size.
	raw, err := encMode.Marshal(map[int]any{5: []byte{1, 2}})
	require.NoError(t, err)
	_, err = Decode(raw)
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestParser(t *testing.T) {
	var p Parser

	raw, err := Encode(testDataset())
	require.NoError(t, err)

	commissioned, err := p.Validate(raw)
	require.NoError(t, err)
	assert.True(t, commissioned)

	x, err := p.ExtendedPANID(raw)
	require.NoError(t, err)
	assert.Equal(t, "dead00beef00cafe", x.String())

	partial := testDataset()
	partial.NetworkKey = nil
	raw, err = Encode(partial)
	require.NoError(t, err)
	commissioned, err = p.Validate(raw)
	require.NoError(t, err)
	assert.False(t, commissioned)

	partial.ExtendedPANID = nil
	raw, err = Encode(partial)
	require.NoError(t, err)
	_, err = p.ExtendedPANID(raw)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestParserWithNetworkConfig(t *testing.T) {
	raw, err := Encode(testDataset())
	require.NoError(t, err)

	cfg := netcomm.NewNetworkConfig(Parser{})
	require.NoError(t, cfg.Init(raw))
	assert.True(t, cfg.IsCommissioned())
	assert.Equal(t, netcomm.StatusSuccess, netcomm.MatchesNetworkID(cfg, testDataset().ExtendedPANID))
}

func TestGenerate(t *testing.T) {
	a, err := Generate("home", 15)
	require.NoError(t, err)
	assert.True(t, a.IsCommissioned())
	assert.Equal(t, "home", a.NetworkName)
	assert.Equal(t, uint16(15), *a.Channel)
	assert.Equal(t, byte(0xfd), a.MeshLocalPrefix[0])
	assert.NotEqual(t, uint16(0xFFFF), *a.PANID)

	raw, err := Encode(a)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(raw), netcomm.MaxDatasetLength)

	b, err := Generate("home", 15)
	require.NoError(t, err)
	assert.NotEqual(t, a.ExtendedPANID, b.ExtendedPANID)
	assert.NotEqual(t, a.NetworkKey, b.NetworkKey)

	_, err = Generate("home", 5)
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestStringHidesKeys(t *testing.T) {
	s := testDataset().String()
	assert.Contains(t, s, "dead00beef00cafe")
	assert.Contains(t, s, "0x1234")
	assert.NotContains(t, s, "4242")
}
