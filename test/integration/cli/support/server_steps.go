package support

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/langid/internal/profile"
	"github.com/MeKo-Tech/langid/internal/reload"
	"github.com/MeKo-Tech/langid/internal/server"
)

// RegisterServerSteps registers the HTTP and WebSocket steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the server is running$`, testCtx.theServerIsRunning)
	sc.Step(`^the server is running with a limit of (\d+) requests? per minute$`, testCtx.theServerIsRunningWithLimit)
	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^I POST the "([^"]*)" sample to "([^"]*)"$`, testCtx.iPOSTTheSample)
	sc.Step(`^I POST the "([^"]*)" sample to "([^"]*)" with hint "([^"]*)"$`, testCtx.iPOSTTheSampleWithHint)
	sc.Step(`^I POST the text "([^"]*)" to "([^"]*)"$`, testCtx.iPOSTTheText)
	sc.Step(`^I make an OPTIONS request to "([^"]*)"$`, testCtx.iMakeAnOPTIONSRequestTo)
	sc.Step(`^I send the "([^"]*)" sample over the WebSocket$`, testCtx.iSendTheSampleOverTheWebSocket)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should be valid JSON$`, testCtx.theResponseShouldBeValidJSON)
	sc.Step(`^the response should contain field "([^"]*)"$`, testCtx.theResponseShouldContainField)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseFieldShouldBe)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
}

func (testCtx *TestContext) theServerIsRunning() error {
	return testCtx.startServer(server.Config{})
}

func (testCtx *TestContext) theServerIsRunningWithLimit(perMinute int) error {
	return testCtx.startServer(server.Config{
		RateLimit: server.RateLimitConfig{Enabled: true, RequestsPerMinute: perMinute},
	})
}

// startServer serves the scenario's profiles through an httptest server.
func (testCtx *TestContext) startServer(cfg server.Config) error {
	testCtx.StopServer()

	store, err := profile.LoadDir(testCtx.ProfilesDir, profile.DefaultExtension, profile.DefaultStoreConfig())
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	cfg.Version = "test"
	s, err := server.NewServer(reload.Static(store), cfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	testCtx.HTTPServer = httptest.NewServer(mux)
	return nil
}

func (testCtx *TestContext) serverURL(endpoint string) (string, error) {
	if testCtx.HTTPServer == nil {
		return "", fmt.Errorf("server is not running")
	}
	return testCtx.HTTPServer.URL + endpoint, nil
}

func (testCtx *TestContext) iGET(endpoint string) error {
	return testCtx.doRequest(http.MethodGet, endpoint, nil)
}

func (testCtx *TestContext) iPOSTTheSample(language, endpoint string) error {
	return testCtx.iPOSTTheSampleWithHint(language, endpoint, "")
}

func (testCtx *TestContext) iPOSTTheSampleWithHint(language, endpoint, hint string) error {
	text, err := sampleText(language)
	if err != nil {
		return err
	}
	return testCtx.postIdentify(endpoint, server.IdentifyRequest{Text: text, Hint: hint})
}

func (testCtx *TestContext) iPOSTTheText(text, endpoint string) error {
	return testCtx.postIdentify(endpoint, server.IdentifyRequest{Text: text})
}

func (testCtx *TestContext) postIdentify(endpoint string, req server.IdentifyRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return testCtx.doRequest(http.MethodPost, endpoint, body)
}

func (testCtx *TestContext) iMakeAnOPTIONSRequestTo(endpoint string) error {
	return testCtx.doRequest(http.MethodOptions, endpoint, nil)
}

func (testCtx *TestContext) doRequest(method, endpoint string, body []byte) error {
	url, err := testCtx.serverURL(endpoint)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(data)
	testCtx.LastHTTPHeaders = make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		testCtx.LastHTTPHeaders[name] = resp.Header.Get(name)
	}
	return nil
}

func (testCtx *TestContext) iSendTheSampleOverTheWebSocket(language string) error {
	text, err := sampleText(language)
	if err != nil {
		return err
	}
	url, err := testCtx.serverURL("/ws/identify")
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err := conn.WriteJSON(server.IdentifyRequest{ID: "scenario", Text: text}); err != nil {
		return err
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("websocket read: %w", err)
	}
	testCtx.LastHTTPStatusCode = http.StatusOK
	testCtx.LastHTTPResponse = string(data)
	return nil
}

func (testCtx *TestContext) theResponseStatusShouldBe(expected int) error {
	if testCtx.LastHTTPStatusCode != expected {
		return fmt.Errorf("expected status %d, got %d\nBody: %s",
			expected, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) responseJSON() (any, error) {
	var data any
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &data); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w\nBody: %s", err, testCtx.LastHTTPResponse)
	}
	return data, nil
}

func (testCtx *TestContext) theResponseShouldBeValidJSON() error {
	_, err := testCtx.responseJSON()
	return err
}

func (testCtx *TestContext) theResponseShouldContainField(field string) error {
	data, err := testCtx.responseJSON()
	if err != nil {
		return err
	}
	return checkFieldExists(data, field)
}

func (testCtx *TestContext) theResponseFieldShouldBe(field, expected string) error {
	data, err := testCtx.responseJSON()
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

func (testCtx *TestContext) theResponseHeaderShouldBe(name, expected string) error {
	if got := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]; got != expected {
		return fmt.Errorf("header %s: expected %q, got %q", name, expected, got)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}
