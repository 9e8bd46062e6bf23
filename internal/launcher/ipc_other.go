//go:build !unix

package launcher

import (
	"errors"
	"os"
)

// newChannel is unsupported here: node expects a named pipe handle on Windows.
func newChannel() (*os.File, *os.File, error) {
	return nil, nil, errors.New("ipc channel is not supported on this platform")
}
