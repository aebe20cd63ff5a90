// Package clipboard defines the clipboard used to copy history entries out of
// the console. sysboard talks to the system clipboard; mockboard is an
// in-memory stand-in for tests.
package clipboard

import (
	"io"
	"strings"
)

// Clipboard reads and writes text content.
type Clipboard interface {
	Read() (io.ReadCloser, error)
	Write(r io.Reader) error
	// IsSupported reports whether the clipboard can be used on this system.
	IsSupported() bool
}

// WriteString writes s to cb.
func WriteString(cb Clipboard, s string) error {
	return cb.Write(strings.NewReader(s))
}

// ReadString reads the whole clipboard content as a string.
func ReadString(cb Clipboard) (string, error) {
	r, err := cb.Read()
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
