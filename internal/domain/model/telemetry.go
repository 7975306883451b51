// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Coercion defaults applied when telemetry fields are absent or unusable.
const (
	DefaultEntropy = 0.3
	DefaultPort    = 80
)

// Protocol identifies the transport/application protocol of a telemetry
// event. The numeric values are part of the model contract: trained
// artifacts one-hot encode protocols in this index order.
type Protocol int

const (
	ProtocolTCP Protocol = iota
	ProtocolUDP
	ProtocolICMP
	ProtocolHTTP

	// NumProtocols is the width of the one-hot protocol encoding.
	NumProtocols = 4
)

var protocolIndex = map[string]Protocol{
	"TCP":  ProtocolTCP,
	"UDP":  ProtocolUDP,
	"ICMP": ProtocolICMP,
	"HTTP": ProtocolHTTP,
}

// ParseProtocol maps a wire name onto its protocol index, matching
// case-insensitively. Unrecognized names map to TCP.
func ParseProtocol(s string) Protocol {
	if p, ok := protocolIndex[strings.ToUpper(s)]; ok {
		return p
	}
	return ProtocolTCP
}

// String returns the canonical wire name.
func (p Protocol) String() string {
	switch p {
	case ProtocolUDP:
		return "UDP"
	case ProtocolICMP:
		return "ICMP"
	case ProtocolHTTP:
		return "HTTP"
	default:
		return "TCP"
	}
}

// Telemetry is a single scoring input as submitted by a sensor. Decoding
// is deliberately forgiving: sensors disagree about field types, so absent
// or unusable values fall back to fixed defaults instead of failing the
// request.
type Telemetry struct {
	Bytes    float64
	Protocol Protocol
	Entropy  float64 // raw; the feature transform clamps to [0,1]
	DstPort  int
	ID       any // opaque correlation token, echoed back unchanged
}

// CoerceTelemetry decodes a JSON scoring payload. Bodies that do not
// decode to an object are treated as empty payloads, so the result is
// always usable.
func CoerceTelemetry(body []byte) Telemetry {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		raw = nil
	}
	return TelemetryFromMap(raw)
}

// UnmarshalJSON applies the same per-field coercion as CoerceTelemetry.
// Only the surrounding decoder's syntax errors can fail a decode.
func (t *Telemetry) UnmarshalJSON(b []byte) error {
	*t = CoerceTelemetry(b)
	return nil
}

// TelemetryFromMap coerces a decoded JSON object field by field.
// The dst_port key wins over the legacy port alias even when its value is
// unusable.
func TelemetryFromMap(raw map[string]any) Telemetry {
	t := Telemetry{
		Protocol: ProtocolTCP,
		Entropy:  DefaultEntropy,
		DstPort:  DefaultPort,
	}
	if v, ok := raw["bytes"]; ok && truthy(v) {
		if f, ok := toFloat(v); ok {
			t.Bytes = f
		}
	}
	if v, ok := raw["protocol"]; ok && truthy(v) {
		if s, ok := v.(string); ok {
			t.Protocol = ParseProtocol(s)
		}
	}
	if v, ok := raw["entropy"]; ok {
		if f, ok := toFloat(v); ok {
			t.Entropy = f
		}
	}
	pv, ok := raw["dst_port"]
	if !ok {
		pv, ok = raw["port"]
	}
	if ok && truthy(pv) {
		if n, okPort := toInt(pv); okPort {
			t.DstPort = n
		}
	}
	if id, ok := raw["id"]; ok {
		t.ID = id
	}
	return t
}
