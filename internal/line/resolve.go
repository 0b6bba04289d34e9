package line

import (
	"fmt"
	"time"
)

// Driver kinds accepted by Resolve.
const (
	KindSerial = "serial"
	KindPTY    = "pty"
)

// Resolve returns the driver for kind.
func Resolve(kind string, readTimeout time.Duration) (Driver, error) {
	switch kind {
	case "", KindSerial:
		return SerialDriver{ReadTimeout: readTimeout}, nil
	case KindPTY:
		return PTYDriver{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, kind)
	}
}
