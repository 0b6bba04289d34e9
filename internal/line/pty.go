// ABOUTME: Pseudo-terminal driver: the session talks to the master, peers attach to the slave path
// ABOUTME: Lets the terminal be exercised without hardware (e.g. `cat /dev/pts/N`)

package line

import (
	"fmt"
	"os"
	"sync"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// PTYDriver allocates a fresh pty pair per Open. The name and rate are
// accepted for interface symmetry and ignored.
type PTYDriver struct{}

// Open allocates the pair and puts the slave in raw mode so bytes pass
// through unmodified.
func (PTYDriver) Open(_ string, _ int) (Port, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("allocating pty: %w", err)
	}
	if _, err := term.MakeRaw(int(slave.Fd())); err != nil {
		_ = master.Close()
		_ = slave.Close()
		return nil, fmt.Errorf("setting pty raw mode: %w", err)
	}
	return &ptyPort{master: master, slave: slave}, nil
}

type ptyPort struct {
	master *os.File
	slave  *os.File

	once sync.Once
	err  error
}

func (p *ptyPort) Read(b []byte) (int, error)  { return p.master.Read(b) }
func (p *ptyPort) Write(b []byte) (int, error) { return p.master.Write(b) }

// Describe returns the slave device path peers should open.
func (p *ptyPort) Describe() string { return p.slave.Name() }

func (p *ptyPort) Close() error {
	p.once.Do(func() {
		serr := p.slave.Close()
		p.err = p.master.Close()
		if p.err == nil {
			p.err = serr
		}
	})
	return p.err
}

// Slave exposes the peer end, mainly for tests.
func (p *ptyPort) Slave() *os.File { return p.slave }
