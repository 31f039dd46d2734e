package support

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/langid/cmd/langid/cmd"
	"github.com/MeKo-Tech/langid/internal/testutil"
)

// RegisterCommonSteps registers the command execution steps.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the profiles are built from the training texts$`, testCtx.theProfilesAreBuilt)
	sc.Step(`^a text file "([^"]*)" containing "([^"]*)"$`, testCtx.aTextFileContaining)
	sc.Step(`^a text file "([^"]*)" with the "([^"]*)" sample$`, testCtx.aTextFileWithSample)
	sc.Step(`^the standard input "([^"]*)"$`, testCtx.theStandardInput)

	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the first output line should start with "([^"]*)"$`, testCtx.theFirstOutputLineShouldStartWith)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON output should contain field "([^"]*)"$`, testCtx.theJSONShouldContain)
	sc.Step(`^the JSON output should not contain field "([^"]*)"$`, testCtx.theJSONShouldNotContain)
	sc.Step(`^the JSON output field "([^"]*)" should be "([^"]*)"$`, testCtx.theJSONFieldShouldBe)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
}

func (testCtx *TestContext) theProfilesAreBuilt() error {
	if err := testCtx.iRunCommand("langid create --text-directory {texts} --ngram-directory {profiles}"); err != nil {
		return err
	}
	return testCtx.theCommandShouldSucceed()
}

func (testCtx *TestContext) aTextFileContaining(name, content string) error {
	return testCtx.writeTempFile(name, content)
}

func (testCtx *TestContext) aTextFileWithSample(name, language string) error {
	text, err := sampleText(language)
	if err != nil {
		return err
	}
	return testCtx.writeTempFile(name, text)
}

func (testCtx *TestContext) theStandardInput(content string) error {
	testCtx.Stdin = content
	return nil
}

// iRunCommand runs a fresh langid command tree in-process and stores the
// result. A leading "langid" word is optional.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substituteCommandVariables(command)
	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	args := strings.Fields(command)
	if len(args) > 0 && args[0] == "langid" {
		args = args[1:]
	}

	root := cmd.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(testCtx.Stdin))
	root.SetArgs(args)

	testCtx.LastError = root.Execute()
	testCtx.LastOutput = stdout.String()
	testCtx.LastStderr = stderr.String()
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)
	testCtx.Stdin = ""
	return nil
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastError != nil {
		return fmt.Errorf("command %q failed: %w\nOutput: %s\nStderr: %s",
			testCtx.LastCommand, testCtx.LastError, testCtx.LastOutput, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastError == nil {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) combinedOutput() string {
	return testCtx.LastOutput + testCtx.LastStderr
}

func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.combinedOutput(), expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.combinedOutput())
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	if strings.Contains(testCtx.combinedOutput(), text) {
		return fmt.Errorf("output unexpectedly contains '%s'\nActual output: %s", text, testCtx.combinedOutput())
	}
	return nil
}

func (testCtx *TestContext) theFirstOutputLineShouldStartWith(prefix string) error {
	first, _, _ := strings.Cut(testCtx.LastOutput, "\n")
	if !strings.HasPrefix(first, prefix) {
		return fmt.Errorf("first output line %q does not start with %q", first, prefix)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	_, err := testCtx.outputJSON()
	return err
}

func (testCtx *TestContext) outputJSON() (any, error) {
	output := strings.TrimSpace(testCtx.LastOutput)
	if output == "" {
		return nil, errors.New("no JSON found in empty output")
	}
	var data any
	if err := json.Unmarshal([]byte(output), &data); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, output)
	}
	return data, nil
}

// theJSONShouldContain checks a dotted field path. A path segment that is
// a number indexes into an array.
func (testCtx *TestContext) theJSONShouldContain(field string) error {
	data, err := testCtx.outputJSON()
	if err != nil {
		return err
	}
	return checkFieldExists(data, field)
}

func (testCtx *TestContext) theJSONShouldNotContain(field string) error {
	data, err := testCtx.outputJSON()
	if err != nil {
		return err
	}
	if _, err := lookupField(data, field); err == nil {
		return fmt.Errorf("field '%s' unexpectedly present in JSON", field)
	}
	return nil
}

func (testCtx *TestContext) theJSONFieldShouldBe(field, expected string) error {
	data, err := testCtx.outputJSON()
	if err != nil {
		return err
	}
	value, err := lookupField(data, field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("field %s: expected %q, got %q", field, expected, got)
	}
	return nil
}

func checkFieldExists(data any, field string) error {
	_, err := lookupField(data, field)
	return err
}

func lookupField(data any, field string) (any, error) {
	parts := strings.Split(field, ".")
	current := data

	for i, part := range parts {
		path := strings.Join(parts[:i+1], ".")
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return nil, fmt.Errorf("field '%s' not found in JSON", path)
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("invalid array index at '%s'", path)
			}
			current = v[idx]
		default:
			return nil, fmt.Errorf("cannot navigate into non-container field at '%s'", path)
		}
	}
	return current, nil
}

func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}
	full := testCtx.LastError.Error() + " " + testCtx.combinedOutput()
	if !strings.Contains(strings.ToLower(full), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not contain '%s'\nActual error: %s", errorText, full)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(name string) error {
	path := testCtx.substituteCommandVariables(name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file %s does not exist: %w", path, err)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldNotExist(name string) error {
	path := testCtx.substituteCommandVariables(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file %s exists", path)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(name, text string) error {
	path := testCtx.substituteCommandVariables(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !strings.Contains(string(data), text) {
		return fmt.Errorf("file %s does not contain '%s'\nContent: %s", path, text, data)
	}
	return nil
}

func (testCtx *TestContext) writeTempFile(name, content string) error {
	path := testCtx.TempPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

// substituteCommandVariables expands {texts}, {profiles} and {tmp}.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	return strings.NewReplacer(
		"{texts}", testCtx.TextsDir,
		"{profiles}", testCtx.ProfilesDir,
		"{tmp}", testCtx.TempDir,
	).Replace(command)
}

func sampleText(language string) (string, error) {
	for _, s := range testutil.Samples() {
		if s.Language == language {
			return s.Text, nil
		}
	}
	return "", fmt.Errorf("no sample text for language %q", language)
}
