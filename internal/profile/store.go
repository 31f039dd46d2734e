package profile

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// DefaultHintMultiplier is the boost applied to a hinted language when the
// request does not carry its own multiplier.
const DefaultHintMultiplier = 0.10

// StoreConfig configures a Store.
type StoreConfig struct {
	HintMultiplier float64      // Default hint boost; 0 disables boosting for requests without their own
	Logger         *slog.Logger // Defaults to slog.Default()
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{HintMultiplier: DefaultHintMultiplier}
}

// Store holds the reference profiles of every known language. It is built
// once and read-only afterwards, so it can be shared between goroutines.
type Store struct {
	languages      []*Language
	byCode         map[string]*Language
	maxLength      int
	hintMultiplier float64
}

// NewStore builds a store from loaded profiles.
func NewStore(languages []*Language, cfg StoreConfig) (*Store, error) {
	if len(languages) == 0 {
		return nil, fmt.Errorf("%w: no language profiles", ErrInvalidInput)
	}
	if cfg.HintMultiplier < 0 || math.IsNaN(cfg.HintMultiplier) || math.IsInf(cfg.HintMultiplier, 0) {
		return nil, fmt.Errorf("%w: hint multiplier %v out of range", ErrInvalidInput, cfg.HintMultiplier)
	}

	s := &Store{
		languages:      make([]*Language, 0, len(languages)),
		byCode:         make(map[string]*Language, len(languages)),
		hintMultiplier: cfg.HintMultiplier,
	}
	for _, l := range languages {
		if l == nil {
			continue
		}
		if _, dup := s.byCode[l.Code()]; dup {
			return nil, fmt.Errorf("%w: duplicate language %q", ErrInvalidInput, l.Code())
		}
		s.byCode[l.Code()] = l
		s.languages = append(s.languages, l)
		s.maxLength = max(s.maxLength, l.MaxLength())
	}
	if len(s.languages) == 0 {
		return nil, fmt.Errorf("%w: no language profiles", ErrInvalidInput)
	}
	sort.Slice(s.languages, func(i, j int) bool { return s.languages[i].Code() < s.languages[j].Code() })

	return s, nil
}

// LoadDir discovers and parses every profile below dir.
func LoadDir(dir, ext string, cfg StoreConfig) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files, err := Discover(dir, ext)
	if err != nil {
		return nil, err
	}

	languages := make([]*Language, 0, len(files))
	for _, f := range files {
		lang, err := LoadFile(f.Code, f.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded language profile",
			"language", lang.Code(), "path", f.Path, "ngrams", lang.Len(), "max_length", lang.MaxLength())
		languages = append(languages, lang)
	}

	store, err := NewStore(languages, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("language profiles loaded", "dir", dir, "languages", store.Len(), "max_length", store.MaxLength())
	return store, nil
}

// Languages returns the profiles ordered by code.
func (s *Store) Languages() []*Language {
	out := make([]*Language, len(s.languages))
	copy(out, s.languages)
	return out
}

// Language looks up a profile by code.
func (s *Store) Language(code string) (*Language, bool) {
	l, ok := s.byCode[code]
	return l, ok
}

// Codes returns the language codes in ascending order.
func (s *Store) Codes() []string {
	codes := make([]string, len(s.languages))
	for i, l := range s.languages {
		codes[i] = l.Code()
	}
	return codes
}

// MaxLength is the longest n-gram length across all profiles. Query text
// is extracted up to this length.
func (s *Store) MaxLength() int { return s.maxLength }

// HintMultiplier is the default hint boost.
func (s *Store) HintMultiplier() float64 { return s.hintMultiplier }

// Len returns the number of languages.
func (s *Store) Len() int { return len(s.languages) }
