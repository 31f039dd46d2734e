package profile

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/langid/internal/ngram"
)

func mustLanguage(t *testing.T, code string, freqs ngram.Frequencies) *Language {
	t.Helper()
	l, err := NewLanguage(code, freqs, "")
	require.NoError(t, err)
	return l
}

func TestNewStore(t *testing.T) {
	store, err := NewStore([]*Language{
		mustLanguage(t, "fr", ngram.Frequencies{"$le$": 3, "e": 1}),
		mustLanguage(t, "en", ngram.Frequencies{"$th": 2}),
	}, DefaultStoreConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "fr"}, store.Codes())
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 2, store.MaxLength())
	assert.InDelta(t, DefaultHintMultiplier, store.HintMultiplier(), 1e-12)

	fr, ok := store.Language("fr")
	require.True(t, ok)
	assert.InDelta(t, 3.0, fr.Weight("$le$"), 1e-12)
	assert.Zero(t, fr.Weight("missing"))

	_, ok = store.Language("de")
	assert.False(t, ok)
}

func TestNewStore_Errors(t *testing.T) {
	en := mustLanguage(t, "en", ngram.Frequencies{"a": 1})

	_, err := NewStore(nil, DefaultStoreConfig())
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewStore([]*Language{en, en}, DefaultStoreConfig())
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewStore([]*Language{en}, StoreConfig{HintMultiplier: -0.5})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestNewLanguage_Errors(t *testing.T) {
	_, err := NewLanguage("", ngram.Frequencies{"a": 1}, "")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewLanguage("en", ngram.Frequencies{}, "")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestLanguage_NgramsIsCopy(t *testing.T) {
	l := mustLanguage(t, "en", ngram.Frequencies{"a": 1})
	m := l.Ngrams()
	m["a"] = 42
	assert.InDelta(t, 1.0, l.Weight("a"), 1e-12)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "en.txt"), "$th       1.5\nhe$       0.5\n$the$     3\n")
	writeFile(t, filepath.Join(dir, "de.txt"), "$de       2\n$der$     3\n")

	store, err := LoadDir(dir, ".txt", StoreConfig{HintMultiplier: 0.2})
	require.NoError(t, err)

	assert.Equal(t, []string{"de", "en"}, store.Codes())
	assert.Equal(t, 3, store.MaxLength())
	assert.InDelta(t, 0.2, store.HintMultiplier(), 1e-12)

	en, ok := store.Language("en")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "en.txt"), en.Source())
	assert.Equal(t, 3, en.Len())
}

func TestLoadDir_MalformedAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "en.txt"), "$th 1.5\n")
	writeFile(t, filepath.Join(dir, "fr.txt"), "$le 1\nbroken\n")

	_, err := LoadDir(dir, ".txt", DefaultStoreConfig())
	require.Error(t, err)

	var mErr *MalformedProfileError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, filepath.Join(dir, "fr.txt"), mErr.Path)
	assert.Equal(t, 2, mErr.Line)
}
