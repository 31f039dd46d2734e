package profile

import (
	"fmt"
	"os"
)

// LoadFile reads and parses a single profile file.
func LoadFile(code, path string) (*Language, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: profile path cannot be empty", ErrInvalidInput)
	}
	f, err := os.Open(path) //nolint:gosec // G304: profile paths come from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	freqs, err := Parse(f, path)
	if err != nil {
		return nil, err
	}
	return NewLanguage(code, freqs, path)
}
