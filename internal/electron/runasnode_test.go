package electron

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo_RunAsNodeEnviron(t *testing.T) {
	for _, version := range []string{"0.36.0", "0.37.8", "1.4.3"} {
		t.Run(version, func(t *testing.T) {
			env := Info{Version: version}.RunAsNodeEnviron([]string{"PATH=/bin"})
			assert.Equal(t, []string{
				"PATH=/bin",
				"ELECTRON_RUN_AS_NODE=1",
				"ATOM_SHELL_INTERNAL_RUN_AS_NODE=1",
			}, env)
		})
	}
}
