package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	Version = "1.2.3"
	GitCommit = "abc123"

	s := String()
	assert.Contains(t, s, "electron-inspector 1.2.3")
	assert.Contains(t, s, "abc123")
}
