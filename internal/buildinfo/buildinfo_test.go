package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	old := Commit
	t.Cleanup(func() { Commit = old })
	Commit = "abc123"

	info := Info()
	assert.Equal(t, Version, info["version"])
	assert.Equal(t, "abc123", info["commit"])
	assert.NotEmpty(t, info["goVersion"])
}
