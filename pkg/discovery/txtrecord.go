package discovery

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/mash-protocol/meshprov/pkg/netcomm"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// BorderAgentInfo is the network information carried in MeshCoP TXT records.
type BorderAgentInfo struct {
	NetworkName     string
	ExtendedPANID   netcomm.ExtendedPANID
	ExtendedAddress [8]byte
	Version         string
	StateBitmap     uint32
}

// EncodeBorderAgentTXT creates TXT records for a border agent.
func EncodeBorderAgentTXT(info *BorderAgentInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyNetworkName] = info.NetworkName
	txt[TXTKeyExtendedPANID] = info.ExtendedPANID.String()

	// Optional fields
	if info.ExtendedAddress != [8]byte{} {
		txt[TXTKeyExtendedAddress] = hex.EncodeToString(info.ExtendedAddress[:])
	}
	if info.Version != "" {
		txt[TXTKeyVersion] = info.Version
	}
	if info.StateBitmap != 0 {
		txt[TXTKeyStateBitmap] = fmt.Sprintf("%08x", info.StateBitmap)
	}

	return txt
}

// DecodeBorderAgentTXT parses TXT records from a border agent.
func DecodeBorderAgentTXT(txt TXTRecordMap) (*BorderAgentInfo, error) {
	info := &BorderAgentInfo{}

	// Parse network name (required)
	var ok bool
	info.NetworkName, ok = txt[TXTKeyNetworkName]
	if !ok || info.NetworkName == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyNetworkName)
	}

	// Parse extended PAN ID (required)
	xp, ok := txt[TXTKeyExtendedPANID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyExtendedPANID)
	}
	x, err := netcomm.ParseExtendedPANID(strings.ToLower(xp))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTXTRecord, err)
	}
	info.ExtendedPANID = x

	// Optional fields
	if xa, ok := txt[TXTKeyExtendedAddress]; ok {
		b, err := hex.DecodeString(xa)
		if err != nil || len(b) != len(info.ExtendedAddress) {
			return nil, fmt.Errorf("%w: invalid extended address %q", ErrInvalidTXTRecord, xa)
		}
		copy(info.ExtendedAddress[:], b)
	}
	info.Version = txt[TXTKeyVersion]
	if sb, ok := txt[TXTKeyStateBitmap]; ok {
		v, err := strconv.ParseUint(sb, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid state bitmap %q", ErrInvalidTXTRecord, sb)
		}
		info.StateBitmap = uint32(v)
	}

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value" strings.
// This format is commonly used by mDNS libraries.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}
