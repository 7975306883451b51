// Package feature derives the fixed numeric vector consumed by the
// scoring model. The transform is total: telemetry arrives pre-coerced,
// so no input can fail it.
package feature

import (
	"fmt"
	"math"

	model "github.com/SanatanSinghVishen/Tracel/internal/domain/model"
)

// Column names. The natural order below is part of the model contract;
// bundled artifacts may declare their own order, which Select honors.
const (
	ColBytesLog     = "bytes_log"
	ColEntropy      = "entropy"
	ColDstPort      = "dst_port"
	ColProtoTCP     = "proto_tcp"
	ColProtoUDP     = "proto_udp"
	ColProtoICMP    = "proto_icmp"
	ColProtoHTTP    = "proto_http"
	ColPortIsCommon = "port_is_common"
	ColPortIsAttack = "port_is_attack"
	ColPortIsWeird  = "port_is_weird"
)

var naturalOrder = []string{
	ColBytesLog,
	ColEntropy,
	ColDstPort,
	ColProtoTCP,
	ColProtoUDP,
	ColProtoICMP,
	ColProtoHTTP,
	ColPortIsCommon,
	ColPortIsAttack,
	ColPortIsWeird,
}

// Fixed port sets. The attack list is an informational flag only, not
// security policy.
var commonPorts = map[int]struct{}{
	80:   {},
	443:  {},
	8080: {},
}

var attackPorts = map[int]struct{}{
	23:   {},
	53:   {},
	123:  {},
	445:  {},
	3389: {},
	1900: {},
	4444: {},
}

// Vector is one telemetry event encoded for inference. Exactly one
// protocol flag is set, and PortIsWeird is always the complement of
// PortIsCommon.
type Vector struct {
	BytesLog     float64
	Entropy      float64
	DstPort      float64
	ProtoTCP     float64
	ProtoUDP     float64
	ProtoICMP    float64
	ProtoHTTP    float64
	PortIsCommon float64
	PortIsAttack float64
	PortIsWeird  float64
}

// Transform encodes telemetry into a feature vector.
func Transform(t model.Telemetry) Vector {
	v := Vector{
		BytesLog: math.Log1p(math.Max(0, t.Bytes)),
		Entropy:  clamp01(t.Entropy),
		DstPort:  float64(t.DstPort),
	}
	switch t.Protocol {
	case model.ProtocolUDP:
		v.ProtoUDP = 1
	case model.ProtocolICMP:
		v.ProtoICMP = 1
	case model.ProtocolHTTP:
		v.ProtoHTTP = 1
	default:
		v.ProtoTCP = 1
	}
	if _, ok := commonPorts[t.DstPort]; ok {
		v.PortIsCommon = 1
	} else {
		v.PortIsWeird = 1
	}
	if _, ok := attackPorts[t.DstPort]; ok {
		v.PortIsAttack = 1
	}
	return v
}

// Columns returns the natural column order.
func Columns() []string {
	out := make([]string, len(naturalOrder))
	copy(out, naturalOrder)
	return out
}

// Values returns the vector in natural column order.
func (v Vector) Values() []float64 {
	out, _ := v.Select(naturalOrder)
	return out
}

// Select returns the vector reordered to the given column names. Column
// order is never inferred positionally: a name this transform does not
// produce is an error, because silently substituting a value would feed
// the model garbage at the wrong position.
func (v Vector) Select(columns []string) ([]float64, error) {
	out := make([]float64, len(columns))
	for i, name := range columns {
		val, ok := v.value(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		out[i] = val
	}
	return out, nil
}

func (v Vector) value(name string) (float64, bool) {
	switch name {
	case ColBytesLog:
		return v.BytesLog, true
	case ColEntropy:
		return v.Entropy, true
	case ColDstPort:
		return v.DstPort, true
	case ColProtoTCP:
		return v.ProtoTCP, true
	case ColProtoUDP:
		return v.ProtoUDP, true
	case ColProtoICMP:
		return v.ProtoICMP, true
	case ColProtoHTTP:
		return v.ProtoHTTP, true
	case ColPortIsCommon:
		return v.PortIsCommon, true
	case ColPortIsAttack:
		return v.PortIsAttack, true
	case ColPortIsWeird:
		return v.PortIsWeird, true
	}
	return 0, false
}

func clamp01(f float64) float64 {
	return math.Min(1, math.Max(0, f))
}
