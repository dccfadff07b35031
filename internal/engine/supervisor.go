package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ServerModule is the Java module entry point that serves the engine.
const ServerModule = "xliffFilters/com.maxprograms.server.FilterServer"

const (
	defaultProbeInterval = 500 * time.Millisecond
	defaultProbeAttempts = 40
	probeConnectTimeout  = time.Second
	stopRequestTimeout   = 20 * time.Second
)

// ErrNotReady is returned when the readiness probe gives up.
var ErrNotReady = errors.New("engine did not become ready")

// Process is a running engine child.
type Process interface {
	Wait() error
	Kill() error
}

// StartFunc launches name with args in dir, wiring its output streams.
type StartFunc func(dir, name string, args []string, stdout, stderr io.Writer) (Process, error)

// SupervisorConfig describes how to launch and reach the engine.
type SupervisorConfig struct {
	JavaPath string
	AppDir   string
	Port     int
	Lang     string
	Endpoint string
}

// Supervisor owns the engine child process lifecycle.
type Supervisor struct {
	cfg    SupervisorConfig
	start  StartFunc
	http   *http.Client
	probe  *http.Client
	logger *slog.Logger

	probeInterval time.Duration
	probeAttempts int

	mu      sync.Mutex
	proc    Process
	stopped bool
}

// NewSupervisor creates a supervisor that launches processes with os/exec.
func NewSupervisor(cfg SupervisorConfig, logger *slog.Logger) *Supervisor {
	return NewSupervisorForTests(cfg, startExec, nil, logger)
}

// NewSupervisorForTests creates a supervisor with an injectable process starter.
func NewSupervisorForTests(cfg SupervisorConfig, start StartFunc, hc *http.Client, logger *slog.Logger) *Supervisor {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = slog.Default()
	}
	if hc == nil {
		hc = &http.Client{Timeout: stopRequestTimeout}
	}
	return &Supervisor{
		cfg:           cfg,
		start:         start,
		http:          hc,
		probe:         &http.Client{Timeout: probeConnectTimeout, Transport: hc.Transport},
		logger:        logger.With("component", "engine"),
		probeInterval: defaultProbeInterval,
		probeAttempts: defaultProbeAttempts,
	}
}

// SetProbe overrides readiness probe pacing.
func (s *Supervisor) SetProbe(interval time.Duration, attempts int) {
	if interval > 0 {
		s.probeInterval = interval
	}
	if attempts > 0 {
		s.probeAttempts = attempts
	}
}

// Args returns the command line passed to the Java runtime.
func (s *Supervisor) Args() []string {
	args := []string{"--module-path", "lib", "-m", ServerModule}
	if s.cfg.Port > 0 {
		args = append(args, "-port", strconv.Itoa(s.cfg.Port))
	}
	if s.cfg.Lang != "" {
		args = append(args, "-lang", s.cfg.Lang)
	}
	return args
}

// Start launches the engine once. It never restarts a stopped or exited engine.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return fmt.Errorf("engine supervisor already stopped")
	}
	if s.proc != nil {
		return nil
	}

	stdout := &lineLogger{logger: s.logger, level: slog.LevelInfo, stream: "stdout"}
	stderr := &lineLogger{logger: s.logger, level: slog.LevelWarn, stream: "stderr"}
	proc, err := s.start(s.cfg.AppDir, s.cfg.JavaPath, s.Args(), stdout, stderr)
	if err != nil {
		s.logger.Error("engine spawn failed", "java", s.cfg.JavaPath, "dir", s.cfg.AppDir, "error", err)
		return fmt.Errorf("spawn engine: %w", err)
	}

	s.proc = proc
	s.logger.Info("engine started", "java", s.cfg.JavaPath, "dir", s.cfg.AppDir)

	go s.watch(proc)
	return nil
}

// watch logs the child's exit; an exit before Stop is unexpected.
func (s *Supervisor) watch(proc Process) {
	err := proc.Wait()

	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()

	if stopped {
		s.logger.Info("engine exited")
		return
	}
	s.logger.Error("engine exited unexpectedly", "error", err)
}

// WaitReady probes the endpoint until it answers or attempts run out.
func (s *Supervisor) WaitReady(ctx context.Context) error {
	for attempt := 1; attempt <= s.probeAttempts; attempt++ {
		if s.Reachable(ctx) {
			s.logger.Debug("engine ready", "attempt", attempt)
			return nil
		}
		if attempt == s.probeAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.probeInterval):
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrNotReady, s.probeAttempts)
}

// Reachable sends one probe; any HTTP answer counts as reachable.
func (s *Supervisor) Reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := s.probe.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// Stop asks the engine to shut down and kills the child if the request fails.
// Only the first call has any effect.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	proc := s.proc
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, stopRequestTimeout)
	defer cancel()

	err := s.requestStop(ctx)
	if err == nil {
		s.logger.Info("engine stop requested")
		return nil
	}

	s.logger.Warn("engine stop request failed", "error", err)
	if proc == nil {
		return nil
	}
	if killErr := proc.Kill(); killErr != nil {
		return fmt.Errorf("kill engine: %w", killErr)
	}
	return nil
}

func (s *Supervisor) requestStop(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint+"/stop", nil)
	if err != nil {
		return err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}
	return nil
}

// execProcess adapts exec.Cmd to Process.
type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() error { return p.cmd.Wait() }

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// startExec launches the engine with os/exec. The child outlives any request context.
func startExec(dir, name string, args []string, stdout, stderr io.Writer) (Process, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

// lineLogger forwards complete output lines to the structured logger.
type lineLogger struct {
	logger *slog.Logger
	level  slog.Level
	stream string

	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *lineLogger) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// keep the partial line for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			w.logger.Log(context.Background(), w.level, line, "stream", w.stream)
		}
	}
	return len(p), nil
}
