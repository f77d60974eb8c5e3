package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "v0.3.0"
	assert.Equal(t, "replay v0.3.0 (unknown, built unknown)", String("replay"))
}
