package schema

import "strings"

// NetworkCode identifies an electricity network. Each network runs on a single
// fixed UTC offset; daylight saving never applies to market timestamps.
type NetworkCode string

// All networks supported by the API.
const (
	NetworkNEM NetworkCode = "NEM" // East-coast national market, UTC+10:00
	NetworkWEM NetworkCode = "WEM" // Western market, UTC+08:00
	NetworkAU  NetworkCode = "AU"  // Aggregate of all networks, reported in NEM time
)

// DefaultUTCOffset is used for the aggregate network identifier and for any
// unrecognized network code.
const DefaultUTCOffset = "+10:00"

var networkOffsets = map[NetworkCode]string{
	NetworkNEM: "+10:00",
	NetworkWEM: "+08:00",
	NetworkAU:  "+10:00",
}

// UTCOffset returns the network's fixed UTC offset as a "+HH:MM" string.
func (n NetworkCode) UTCOffset() string {
	if offset, ok := networkOffsets[n.Normalize()]; ok {
		return offset
	}
	return DefaultUTCOffset
}

// IsValid reports whether the code names a known network.
func (n NetworkCode) IsValid() bool {
	_, ok := networkOffsets[n.Normalize()]
	return ok
}

// Normalize upper-cases the code so lookups accept "nem" and "NEM" alike.
func (n NetworkCode) Normalize() NetworkCode {
	return NetworkCode(strings.ToUpper(strings.TrimSpace(string(n))))
}
