package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/langid/internal/profile"
)

// Sample is a short sentence in a known language.
type Sample struct {
	Language string
	Text     string
}

// Samples returns one held-out sentence per training corpus language.
func Samples() []Sample {
	return []Sample{
		{Language: "de", Text: "Die Kinder gingen am Morgen mit ihren Eltern in die Bücherei"},
		{Language: "el", Text: "Τα παιδιά πήγαν στη βιβλιοθήκη το πρωί"},
		{Language: "en", Text: "The children walked to the library with their parents in the morning"},
		{Language: "es", Text: "Los niños fueron a la biblioteca con sus padres por la mañana"},
		{Language: "fr", Text: "Les enfants sont allés à la bibliothèque avec leurs parents le matin"},
		{Language: "ru", Text: "Дети пошли в библиотеку с родителями утром"},
	}
}

// BuildProfiles builds a profile for every training corpus into a fresh
// temporary directory and returns it.
func BuildProfiles(t testing.TB) string {
	t.Helper()

	dir := filepath.Join(CreateTempDir(t), "ngrams")
	_, err := profile.BuildDirectory(context.Background(), profile.DirectoryConfig{
		TextDir:  GetTextsDir(t),
		NgramDir: dir,
		Workers:  2,
		Build:    profile.DefaultBuildConfig(),
	})
	require.NoError(t, err, "Failed to build test profiles")

	return dir
}

// LoadStore builds the test profiles and loads them into a store.
func LoadStore(t testing.TB) *profile.Store {
	t.Helper()

	store, err := profile.LoadDir(BuildProfiles(t), profile.DefaultExtension, profile.DefaultStoreConfig())
	require.NoError(t, err, "Failed to load test profiles")

	return store
}
