package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildProfiles(t *testing.T) {
	dir := BuildProfiles(t)

	for _, s := range Samples() {
		assert.True(t, FileExists(filepath.Join(dir, s.Language+".txt")), "profile for %s", s.Language)
	}
}

func TestLoadStore(t *testing.T) {
	store := LoadStore(t)

	assert.Equal(t, len(Samples()), store.Len())
	assert.Equal(t, 4, store.MaxLength())
}
