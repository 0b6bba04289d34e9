// ABOUTME: Save operation contract: snapshot, write to a sink, report bytes written
// ABOUTME: The accumulator is never modified by a save, whatever the write outcome

package buffer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUnwritable wraps every failure to deliver a snapshot to its destination.
var ErrUnwritable = errors.New("save destination unwritable")

// SaveTo writes a snapshot to w and returns the number of bytes written.
func (a *Accumulator) SaveTo(w io.Writer, asBytes, dump bool) (int, error) {
	if w == nil {
		return 0, fmt.Errorf("%w: no destination", ErrUnwritable)
	}
	snap := a.Snapshot(asBytes, dump)
	n, err := w.Write(snap)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrUnwritable, err)
	}
	if n != len(snap) {
		return n, fmt.Errorf("%w: %v", ErrUnwritable, io.ErrShortWrite)
	}
	return n, nil
}

// SaveFile creates or truncates path and saves a snapshot into it.
func (a *Accumulator) SaveFile(path string, asBytes, dump bool) (n int, err error) {
	if path == "" {
		return 0, fmt.Errorf("%w: empty path", ErrUnwritable)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnwritable, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %v", ErrUnwritable, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	n, err = a.SaveTo(bw, asBytes, dump)
	if err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("%w: %v", ErrUnwritable, err)
	}
	return n, nil
}
