package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, GitCommit, info.GitCommit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v1.2.0", GitCommit: "abc123", BuildDate: "2024-01-01", GoVersion: "go1.25.0"}
	s := info.String()
	assert.True(t, strings.HasPrefix(s, "v1.2.0 "))
	assert.Contains(t, s, "commit: abc123")
	assert.Contains(t, s, "go1.25.0")
}
