// ABOUTME: Serial device driver and port enumeration backed by go.bug.st/serial
// ABOUTME: Reads use a short timeout so the pump can notice Close promptly

package line

import (
	"fmt"
	"sort"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// DefaultReadTimeout matches the poll interval the pump expects.
const DefaultReadTimeout = 50 * time.Millisecond

// SerialDriver opens real serial devices at 8N1.
type SerialDriver struct {
	ReadTimeout time.Duration
}

// Open opens name at rate baud.
func (d SerialDriver) Open(name string, rate int) (Port, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", rate)
	}
	mode := &serial.Mode{
		BaudRate: rate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	timeout := d.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("setting read timeout on %s: %w", name, err)
	}
	return p, nil
}

// PortInfo describes an enumerated serial device.
type PortInfo struct {
	Name    string
	USB     bool
	VID     string
	PID     string
	Serial  string
	Product string
}

// Label is a single-line human description.
func (p PortInfo) Label() string {
	if !p.USB {
		return p.Name
	}
	label := fmt.Sprintf("%s  [%s:%s]", p.Name, p.VID, p.PID)
	if p.Product != "" {
		label += " " + p.Product
	}
	return label
}

// ListPorts enumerates serial devices, sorted by name. USB metadata is
// filled in when the platform enumerator provides it.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		out := make([]PortInfo, 0, len(details))
		for _, d := range details {
			out = append(out, PortInfo{
				Name:    d.Name,
				USB:     d.IsUSB,
				VID:     d.VID,
				PID:     d.PID,
				Serial:  d.SerialNumber,
				Product: d.Product,
			})
		}
		sortPorts(out)
		return out, nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}
	out := make([]PortInfo, 0, len(names))
	for _, n := range names {
		out = append(out, PortInfo{Name: n})
	}
	sortPorts(out)
	return out, nil
}

func sortPorts(ports []PortInfo) {
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
}
