package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeProcess blocks in Wait until killed or released.
type fakeProcess struct {
	done  chan struct{}
	once  sync.Once
	kills atomic.Int32
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{done: make(chan struct{})}
}

func (p *fakeProcess) Wait() error {
	<-p.done
	return nil
}

func (p *fakeProcess) Kill() error {
	p.kills.Add(1)
	p.once.Do(func() { close(p.done) })
	return nil
}

// TestSupervisorStartPassesEngineArguments verifies the launch command line.
func TestSupervisorStartPassesEngineArguments(t *testing.T) {
	proc := newFakeProcess()
	var gotDir, gotName string
	var gotArgs []string
	spawns := 0
	start := func(dir, name string, args []string, stdout, stderr io.Writer) (Process, error) {
		spawns++
		gotDir, gotName, gotArgs = dir, name, args
		_, _ = io.WriteString(stdout, "listening\n")
		return proc, nil
	}

	sup := NewSupervisorForTests(SupervisorConfig{
		JavaPath: "/opt/xm/bin/java",
		AppDir:   "/opt/xm",
		Lang:     "es",
	}, start, nil, nil)

	if err := sup.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if gotDir != "/opt/xm" || gotName != "/opt/xm/bin/java" {
		t.Fatalf("dir/name = %q/%q", gotDir, gotName)
	}
	want := "--module-path lib -m " + ServerModule + " -lang es"
	if strings.Join(gotArgs, " ") != want {
		t.Fatalf("args = %q, want %q", strings.Join(gotArgs, " "), want)
	}

	// A second Start must not spawn again.
	if err := sup.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if spawns != 1 {
		t.Fatalf("spawns = %d, want 1", spawns)
	}
	_ = proc.Kill()
}

// TestSupervisorStartFailureIsReported checks spawn errors are returned, not fatal.
func TestSupervisorStartFailureIsReported(t *testing.T) {
	spawns := 0
	start := func(string, string, []string, io.Writer, io.Writer) (Process, error) {
		spawns++
		return nil, errors.New("no such file")
	}
	sup := NewSupervisorForTests(SupervisorConfig{JavaPath: "/missing/java"}, start, nil, nil)
	if err := sup.Start(); err == nil {
		t.Fatal("expected spawn error")
	}
	// Nothing was recorded, so a later Start tries again.
	if err := sup.Start(); err == nil {
		t.Fatal("expected spawn error on retry")
	}
	if spawns != 2 {
		t.Fatalf("spawns = %d, want 2", spawns)
	}
}

// TestSupervisorStopIsIdempotent verifies only the first Stop sends the stop request.
func TestSupervisorStopIsIdempotent(t *testing.T) {
	var stops atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/stop") {
			stops.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	proc := newFakeProcess()
	start := func(string, string, []string, io.Writer, io.Writer) (Process, error) { return proc, nil }
	sup := NewSupervisorForTests(SupervisorConfig{Endpoint: server.URL + "/FilterServer"}, start, nil, nil)
	if err := sup.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := sup.Stop(context.Background()); err != nil {
			t.Fatalf("Stop() #%d error = %v", i+1, err)
		}
	}
	if got := stops.Load(); got != 1 {
		t.Fatalf("stop requests = %d, want 1", got)
	}
	if got := proc.kills.Load(); got != 0 {
		t.Fatalf("kills = %d, want 0", got)
	}
	if err := sup.Start(); err == nil {
		t.Fatal("expected Start after Stop to fail")
	}
	_ = proc.Kill()
}

// TestSupervisorStopKillsWhenRequestFails checks the forced shutdown path.
func TestSupervisorStopKillsWhenRequestFails(t *testing.T) {
	proc := newFakeProcess()
	start := func(string, string, []string, io.Writer, io.Writer) (Process, error) { return proc, nil }
	sup := NewSupervisorForTests(SupervisorConfig{Endpoint: "http://127.0.0.1:1/FilterServer"}, start, nil, nil)
	if err := sup.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := sup.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := sup.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
	if got := proc.kills.Load(); got != 1 {
		t.Fatalf("kills = %d, want 1", got)
	}
}

// TestSupervisorWaitReady checks the readiness probe gives up after its attempts.
func TestSupervisorWaitReady(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	ready := NewSupervisorForTests(SupervisorConfig{Endpoint: server.URL + "/FilterServer"}, nil, nil, nil)
	if err := ready.WaitReady(context.Background()); err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}

	down := NewSupervisorForTests(SupervisorConfig{Endpoint: "http://127.0.0.1:1/FilterServer"}, nil, nil, nil)
	down.SetProbe(time.Millisecond, 3)
	if err := down.WaitReady(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("WaitReady() error = %v, want %v", err, ErrNotReady)
	}
}

// TestLineLoggerSplitsLines verifies partial writes are joined before logging.
func TestLineLoggerSplitsLines(t *testing.T) {
	var buf strings.Builder
	logger := newTestLogger(&buf)
	w := &lineLogger{logger: logger, stream: "stdout"}

	_, _ = w.Write([]byte("first li"))
	_, _ = w.Write([]byte("ne\nsecond\n"))

	out := buf.String()
	if !strings.Contains(out, "first line") || !strings.Contains(out, "second") {
		t.Fatalf("log output = %q", out)
	}
	if strings.Count(out, "stream=stdout") != 2 {
		t.Fatalf("expected two log records, got %q", out)
	}
}

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}
