package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"xliff-manager/internal/engine"
)

// stubEngine answers engine commands from a fixed table; status always reports completed.
type stubEngine struct {
	mu      sync.Mutex
	replies map[string]string
	calls   map[string]int
	last    map[string]engine.Request
}

func newStubEngine(t *testing.T, replies map[string]string) (*stubEngine, string) {
	t.Helper()
	stub := &stubEngine{
		replies: replies,
		calls:   make(map[string]int),
		last:    make(map[string]engine.Request),
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req engine.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		stub.mu.Lock()
		command := req.Command()
		stub.calls[command]++
		stub.last[command] = req
		body, ok := stub.replies[command]
		stub.mu.Unlock()

		if command == engine.CommandStatus && !ok {
			body, ok = `{"status":"completed"}`, true
		}
		if !ok {
			http.Error(w, "engine down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return stub, server.URL
}

func (s *stubEngine) count(command string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[command]
}

func (s *stubEngine) request(command string) engine.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[command]
}

type testDirs struct {
	app    string
	config string
}

func newTestDirs(t *testing.T) testDirs {
	t.Helper()
	root := t.TempDir()
	dirs := testDirs{app: filepath.Join(root, "app"), config: filepath.Join(root, "config")}
	for _, dir := range []string{dirs.app, dirs.config} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
	}
	return dirs
}

// run executes the CLI against endpoint and returns stdout and stderr.
func run(t *testing.T, dirs testDirs, endpoint string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{
		"--endpoint", endpoint,
		"--app-dir", dirs.app,
		"--config-dir", dirs.config,
		"--manifest", endpoint + "/manifest",
		"--interval", "5ms",
	}, args...)
	err := Execute(context.Background(), full, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// TestValidateCommandPrintsReport checks a job is polled to completion and its payload printed.
func TestValidateCommandPrintsReport(t *testing.T) {
	dirs := newTestDirs(t)
	stub, endpoint := newStubEngine(t, map[string]string{
		engine.CommandValidate:         `{"process":"v-1"}`,
		engine.CommandValidationResult: `{"valid":true,"reason":""}`,
	})

	out, _, err := run(t, dirs, endpoint, "validate", "/work/a.xlf")
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if !strings.Contains(out, `"valid": true`) {
		t.Fatalf("output = %q, want validation payload", out)
	}
	if got := stub.count(engine.CommandValidationResult); got != 1 {
		t.Fatalf("validationResult requests = %d, want 1", got)
	}
	req := stub.request(engine.CommandValidate)
	if got := engine.Response(req).String("file"); got != "/work/a.xlf" {
		t.Fatalf("file = %q, want /work/a.xlf", got)
	}
	if got := engine.Response(req).String("catalog"); got != filepath.Join(dirs.app, "catalog", "catalog.xml") {
		t.Fatalf("catalog = %q, want bundled catalog", got)
	}
}

// TestConvertSubmitFailureStopsEarly checks a refused submit returns an error without polling.
func TestConvertSubmitFailureStopsEarly(t *testing.T) {
	dirs := newTestDirs(t)
	stub, endpoint := newStubEngine(t, map[string]string{})

	_, _, err := run(t, dirs, endpoint, "convert", "--type", "HTML", "--encoding", "UTF-8", "/docs/a.html")
	if err == nil {
		t.Fatal("convert error = nil, want submit failure")
	}
	if got := stub.count(engine.CommandStatus); got != 0 {
		t.Fatalf("status requests = %d, want 0", got)
	}

	out, _, err := run(t, dirs, endpoint, "history", "list")
	if err != nil {
		t.Fatalf("history list error = %v", err)
	}
	if !strings.Contains(out, "convert") || !strings.Contains(out, "failed") {
		t.Fatalf("history = %q, want failed convert entry", out)
	}
}

// TestConvertDetectsTypeAndUsesPreferences checks detection and preference fallbacks.
func TestConvertDetectsTypeAndUsesPreferences(t *testing.T) {
	dirs := newTestDirs(t)
	stub, endpoint := newStubEngine(t, map[string]string{
		engine.CommandGetFileType:      `{"file":"/docs/a.html","type":"HTML","encoding":"UTF-8"}`,
		engine.CommandConvert:          `{"process":"c-1"}`,
		engine.CommandConversionResult: `{"result":"Success"}`,
	})

	if _, _, err := run(t, dirs, endpoint, "prefs", "set", "srcLang", "fr"); err != nil {
		t.Fatalf("prefs set error = %v", err)
	}
	if _, _, err := run(t, dirs, endpoint, "convert", "-t", "de", "/docs/a.html"); err != nil {
		t.Fatalf("convert error = %v", err)
	}

	req := stub.request(engine.CommandConvert)
	checks := map[string]string{
		"type":    "HTML",
		"enc":     "UTF-8",
		"srcLang": "fr",
		"tgtLang": "de",
		"xliff":   "/docs/a.html.xlf",
	}
	for key, want := range checks {
		if got := engine.Response(req).String(key); got != want {
			t.Fatalf("%s = %q, want %q", key, got, want)
		}
	}
}

// TestMergeDomainFailure checks a Failed result becomes a command error carrying the reason.
func TestMergeDomainFailure(t *testing.T) {
	dirs := newTestDirs(t)
	_, endpoint := newStubEngine(t, map[string]string{
		engine.CommandMerge:       `{"process":"m-1"}`,
		engine.CommandMergeResult: `{"result":"Failed","reason":"target folder is read-only"}`,
	})

	_, _, err := run(t, dirs, endpoint, "merge", "-o", "/out/a.html", "/work/a.xlf")
	if err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("merge error = %v, want engine reason", err)
	}
}

// TestTaskRejectsUnknownCommand checks unsupported tasks never reach the engine.
func TestTaskRejectsUnknownCommand(t *testing.T) {
	dirs := newTestDirs(t)
	stub, endpoint := newStubEngine(t, map[string]string{})

	_, _, err := run(t, dirs, endpoint, "task", "translateAll", "/work/a.xlf")
	if err == nil || !strings.Contains(err.Error(), "unsupported task") {
		t.Fatalf("task error = %v, want unsupported task", err)
	}
	if got := stub.count("translateAll"); got != 0 {
		t.Fatalf("engine requests = %d, want 0", got)
	}
}

// TestPrefsSetAndShow checks saved values survive across invocations.
func TestPrefsSetAndShow(t *testing.T) {
	dirs := newTestDirs(t)
	_, endpoint := newStubEngine(t, map[string]string{})

	if _, _, err := run(t, dirs, endpoint, "prefs", "set", "theme", "dark"); err != nil {
		t.Fatalf("prefs set error = %v", err)
	}
	if _, _, err := run(t, dirs, endpoint, "prefs", "set", "theme", "neon"); err == nil {
		t.Fatal("prefs set theme neon error = nil, want error")
	}
	if _, _, err := run(t, dirs, endpoint, "prefs", "set", "colour", "red"); err == nil {
		t.Fatal("prefs set colour error = nil, want error")
	}

	out, _, err := run(t, dirs, endpoint, "prefs", "show")
	if err != nil {
		t.Fatalf("prefs show error = %v", err)
	}
	var prefs map[string]any
	if err := json.Unmarshal([]byte(out), &prefs); err != nil {
		t.Fatalf("decode prefs: %v (%q)", err, out)
	}
	if prefs["theme"] != "dark" {
		t.Fatalf("theme = %v, want dark", prefs["theme"])
	}

	out, _, err = run(t, dirs, endpoint, "prefs", "reset")
	if err != nil {
		t.Fatalf("prefs reset error = %v", err)
	}
	if !strings.Contains(out, `"theme": "system"`) {
		t.Fatalf("reset output = %q, want system theme", out)
	}
}

// TestHistoryListFiltersByKind checks --kind narrows the listing and clear empties it.
func TestHistoryListFiltersByKind(t *testing.T) {
	dirs := newTestDirs(t)
	_, endpoint := newStubEngine(t, map[string]string{
		engine.CommandAnalyse:          `{"process":"a-1"}`,
		engine.CommandAnalysisResult:   `{"result":"Success"}`,
		engine.CommandValidate:         `{"process":"v-1"}`,
		engine.CommandValidationResult: `{"valid":false,"reason":"missing target"}`,
	})

	for _, args := range [][]string{{"analyse", "/work/a.xlf"}, {"validate", "/work/b.xlf"}} {
		if _, _, err := run(t, dirs, endpoint, args...); err != nil {
			t.Fatalf("%s error = %v", args[0], err)
		}
	}

	out, _, err := run(t, dirs, endpoint, "history", "list", "--kind", "analyse")
	if err != nil {
		t.Fatalf("history list error = %v", err)
	}
	if !strings.Contains(out, "/work/a.xlf") || strings.Contains(out, "/work/b.xlf") {
		t.Fatalf("history = %q, want only the analyse entry", out)
	}
	if _, _, err := run(t, dirs, endpoint, "history", "list", "--kind", "export"); err == nil {
		t.Fatal("history list --kind export error = nil, want error")
	}

	if _, _, err := run(t, dirs, endpoint, "history", "clear"); err != nil {
		t.Fatalf("history clear error = %v", err)
	}
	out, _, err = run(t, dirs, endpoint, "history", "list")
	if err != nil {
		t.Fatalf("history list error = %v", err)
	}
	if !strings.Contains(out, "No jobs recorded yet.") {
		t.Fatalf("history = %q, want empty notice", out)
	}
}

// TestDoctorReportsMissingRuntime checks an empty install fails with per-check lines.
func TestDoctorReportsMissingRuntime(t *testing.T) {
	dirs := newTestDirs(t)
	_, endpoint := newStubEngine(t, map[string]string{})

	out, _, err := run(t, dirs, endpoint, "doctor")
	if err == nil {
		t.Fatal("doctor error = nil, want failures")
	}
	if !strings.Contains(out, "[FAIL]") {
		t.Fatalf("output = %q, want a failing check", out)
	}
	if !strings.Contains(out, "[PASS]") {
		t.Fatalf("output = %q, want the engine probe to pass", out)
	}
}

// TestVersionWithoutEngine checks the app version prints even when the engine is down.
func TestVersionWithoutEngine(t *testing.T) {
	dirs := newTestDirs(t)
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	out, _, err := run(t, dirs, endpoint, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "XLIFFManager\t") || !strings.Contains(out, "engine\tunavailable") {
		t.Fatalf("output = %q, want app version and unavailable engine", out)
	}
}

// TestListLanguages checks engine choices print one per line.
func TestListLanguages(t *testing.T) {
	dirs := newTestDirs(t)
	_, endpoint := newStubEngine(t, map[string]string{
		engine.CommandGetLanguages: `{"languages":[{"code":"en","description":"English"},{"code":"es","description":"Spanish"}]}`,
	})

	out, _, err := run(t, dirs, endpoint, "languages")
	if err != nil {
		t.Fatalf("languages error = %v", err)
	}
	if out != "en\tEnglish\nes\tSpanish\n" {
		t.Fatalf("output = %q", out)
	}
}
