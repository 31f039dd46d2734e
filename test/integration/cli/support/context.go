package support

import (
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/langid/internal/testutil"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastStderr    string
	LastError     error
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	WorkingDir  string
	TempDir     string
	TextsDir    string
	ProfilesDir string
	Stdin       string

	// Server state
	HTTPServer *httptest.Server

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    map[string]string
}

// NewTestContext creates a new test context.
func NewTestContext() (*TestContext, error) {
	root, err := testutil.GetProjectRootValidated()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "langid-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &TestContext{
		WorkingDir:      root,
		TempDir:         tempDir,
		TextsDir:        filepath.Join(root, "testdata", "texts"),
		ProfilesDir:     filepath.Join(tempDir, "ngrams"),
		LastHTTPHeaders: map[string]string{},
	}, nil
}

// Cleanup stops the test server and removes the scenario's temp directory.
func (testCtx *TestContext) Cleanup() error {
	testCtx.StopServer()

	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err)
	}
	return nil
}

// StopServer stops the test HTTP server if one is running.
func (testCtx *TestContext) StopServer() {
	if testCtx.HTTPServer != nil {
		testCtx.HTTPServer.Close()
		testCtx.HTTPServer = nil
	}
}

// TempPath returns name joined onto the scenario's temp directory.
func (testCtx *TestContext) TempPath(name string) string {
	return filepath.Join(testCtx.TempDir, filepath.FromSlash(name))
}
