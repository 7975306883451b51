package probe

// Scenario is one synthetic telemetry profile.
type Scenario struct {
	Name     string
	Bytes    float64
	Protocol string
	Entropy  float64
	DstPort  int
}

// Scenarios returns the canonical probe profiles: two benign web
// transfers and four classic attack shapes the model calibration is
// checked against.
func Scenarios() []Scenario {
	return []Scenario{
		{Name: "https small transfer", Bytes: 300, Protocol: "HTTP", Entropy: 0.2, DstPort: 443},
		{Name: "http medium transfer", Bytes: 900, Protocol: "HTTP", Entropy: 0.4, DstPort: 80},
		{Name: "udp high-entropy rdp", Bytes: 300, Protocol: "UDP", Entropy: 0.9, DstPort: 3389},
		{Name: "udp dns tunneling", Bytes: 300, Protocol: "UDP", Entropy: 0.95, DstPort: 53},
		{Name: "icmp covert probe", Bytes: 120, Protocol: "ICMP", Entropy: 0.85, DstPort: 23},
		{Name: "udp exfil burst", Bytes: 50000, Protocol: "UDP", Entropy: 0.95, DstPort: 4444},
	}
}
