// Package patcher drives the external mod-tools binary: it builds overlays
// and supervises the long-running overlay process.
package patcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bocchi/internal/domain"

	"github.com/rs/zerolog"
)

// EventSink receives events from the overlay process. Emit may be called
// from several goroutines.
type EventSink interface {
	Emit(domain.Event)
}

// SinkFunc adapts a function to EventSink
type SinkFunc func(domain.Event)

// Emit calls f(e)
func (f SinkFunc) Emit(e domain.Event) { f(e) }

// DefaultGracePeriod is used when Options.GracePeriod is not positive
const DefaultGracePeriod = time.Second

// Options configures a Controller
type Options struct {
	ToolsPath       string
	ModsDir         string
	ProfilesDir     string
	GracePeriod     time.Duration // Wait after asking the process to exit before killing it
	BuildTimeout    time.Duration // Upper bound for mkoverlay
	AllowedMessages []string
}

// Controller owns the single overlay process. Apply and Stop are serialized;
// a stop always completes before the next build starts.
type Controller struct {
	opts   Options
	runner *Runner
	filter *Filter
	logger zerolog.Logger

	opMu sync.Mutex // serializes Apply and Stop

	mu    sync.Mutex // guards the fields below
	state domain.ProcessState
	proc  *process
	sink  EventSink
}

type process struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	profileDir string
	done       chan struct{} // closed once the exit is fully recorded
}

// NewController creates a controller. Nothing is started until Apply.
func NewController(opts Options, logger zerolog.Logger) *Controller {
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	return &Controller{
		opts:   opts,
		runner: NewRunner(opts.BuildTimeout),
		filter: NewFilter(opts.AllowedMessages),
		logger: logger,
		state:  domain.StateNotRunning,
	}
}

// SetEventSink replaces the event receiver; nil discards events
func (c *Controller) SetEventSink(sink EventSink) {
	c.mu.Lock()
	c.sink = sink
	c.mu.Unlock()
}

// State returns the current process state
func (c *Controller) State() domain.ProcessState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsRunning reports whether an overlay process is held and has not exited
func (c *Controller) IsRunning() bool {
	c.mu.Lock()
	p := c.proc
	c.mu.Unlock()
	if p == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// ToolsPresent reports whether the mod-tools executable is available
func (c *Controller) ToolsPresent() bool {
	return ToolsPresent(c.opts.ToolsPath)
}

// Apply builds the overlay for profile and starts the overlay process.
// Any running process is stopped first.
func (c *Controller) Apply(ctx context.Context, profile *domain.OverlayProfile) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := checkExecutable(c.opts.ToolsPath); err != nil {
		return err
	}

	c.stopLocked()
	c.setState(domain.StateStarting)

	if err := c.start(ctx, profile); err != nil {
		c.setState(domain.StateNotRunning)
		return err
	}
	return nil
}

func (c *Controller) start(ctx context.Context, profile *domain.OverlayProfile) error {
	if err := clearDir(c.opts.ProfilesDir); err != nil {
		return fmt.Errorf("clearing previous overlay: %w", err)
	}

	profileDir := filepath.Join(c.opts.ProfilesDir, profile.ID)
	args := []string{
		"mkoverlay",
		c.opts.ModsDir,
		profileDir,
		"--game:" + profile.GamePath,
		"--mods:" + strings.Join(profile.Mods, "/"),
	}
	if profile.NoTFT {
		args = append(args, "--noTFT")
	}
	if profile.IgnoreConflict {
		args = append(args, "--ignoreConflict")
	}

	c.logger.Info().Str("profile", profile.ID).Strs("mods", profile.Mods).Msg("Building overlay")
	result, err := c.runner.Run(ctx, c.opts.ToolsPath, args...)
	if err != nil {
		return err
	}
	c.logger.Debug().Str("output", result.Stdout).Msg("mkoverlay finished")

	cmd := exec.Command(c.opts.ToolsPath,
		"runoverlay",
		profileDir,
		profileDir+".config",
		"--game:"+profile.GamePath,
		"--opts:none",
	)
	cmd.WaitDelay = c.opts.GracePeriod

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &domain.ProcessError{Op: "stdin", Err: err}
	}
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdoutW.Close()
		stderrW.Close()
		return &domain.ProcessError{Op: "start", Err: err}
	}

	p := &process{cmd: cmd, stdin: stdin, profileDir: profileDir, done: make(chan struct{})}

	c.mu.Lock()
	c.proc = p
	c.state = domain.StateRunning
	c.mu.Unlock()

	c.logger.Info().Int("pid", cmd.Process.Pid).Msg("Overlay process started")

	var streams sync.WaitGroup
	streams.Add(2)
	go func() {
		defer streams.Done()
		c.readStdout(stdoutR)
	}()
	go func() {
		defer streams.Done()
		c.readStderr(stderrR)
	}()
	go func() {
		err := cmd.Wait()
		stdoutW.Close()
		stderrW.Close()
		streams.Wait()
		c.exited(p, err)
	}()

	return nil
}

// exited records the end of p. The handle is only cleared if p is still current.
// done is closed last, so a stop waiting on it observes the cleared handle and
// the exit event has been delivered before the next run starts.
func (c *Controller) exited(p *process, waitErr error) {
	c.mu.Lock()
	expected := c.state == domain.StateStopping
	current := c.proc == p
	c.mu.Unlock()

	if current && !expected {
		// no new run can start while p is still held
		c.removeOutput(p.profileDir)
	}

	c.mu.Lock()
	if c.proc == p {
		c.proc = nil
		if c.state != domain.StateStopping {
			c.state = domain.StateNotRunning
		}
	}
	c.mu.Unlock()

	ev := c.logger.Info()
	if !expected {
		ev = c.logger.Warn()
	}
	ev.Err(waitErr).Bool("requested", expected).Msg("Overlay process exited")

	c.emit(domain.EventStatus, "")
	close(p.done)
}

// removeOutput deletes the overlay built for a profile
func (c *Controller) removeOutput(profileDir string) {
	for _, dir := range []string{profileDir, profileDir + ".config"} {
		if err := os.RemoveAll(dir); err != nil {
			c.logger.Warn().Err(err).Str("path", dir).Msg("Removing overlay output failed")
		}
	}
}

func (c *Controller) readStdout(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		kind, text, forward := c.filter.Classify(line)
		c.logger.Debug().Str("line", line).Bool("forwarded", forward).Msg("mod-tools")
		if forward {
			c.emit(kind, text)
		}
	}
	drain(r)
}

func (c *Controller) readStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		c.logger.Warn().Str("line", line).Msg("mod-tools stderr")
		c.emit(domain.EventError, line)
	}
	drain(r)
}

// drain keeps the writer side from blocking after a scanner gives up on an over-long line
func drain(r io.Reader) {
	io.Copy(io.Discard, r)
}

// Stop asks the overlay process to exit, kills it after the grace period and
// clears the handle and the overlay output. It is a no-op when nothing is running.
func (c *Controller) Stop() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if !c.stopLocked() {
		return nil
	}
	if err := clearDir(c.opts.ProfilesDir); err != nil {
		return fmt.Errorf("clearing overlay output: %w", err)
	}
	return nil
}

// stopLocked reports whether a process was held
func (c *Controller) stopLocked() bool {
	c.mu.Lock()
	p := c.proc
	if p == nil {
		c.state = domain.StateNotRunning
		c.mu.Unlock()
		return false
	}
	c.state = domain.StateStopping
	c.mu.Unlock()

	c.logger.Info().Msg("Stopping overlay process")

	// mod-tools exits on a newline from stdin
	if _, err := io.WriteString(p.stdin, "\n"); err != nil {
		c.logger.Debug().Err(err).Msg("Writing to overlay stdin failed")
	}

	select {
	case <-p.done:
	case <-time.After(c.opts.GracePeriod):
		c.logger.Warn().Dur("grace", c.opts.GracePeriod).Msg("Overlay process did not exit, killing it")
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			c.logger.Error().Err(err).Msg("Killing overlay process failed")
		}
		<-p.done
	}
	p.stdin.Close()

	c.mu.Lock()
	if c.proc == p {
		c.proc = nil
	}
	c.state = domain.StateNotRunning
	c.mu.Unlock()
	return true
}

func (c *Controller) setState(s domain.ProcessState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) emit(kind domain.EventKind, text string) {
	c.mu.Lock()
	sink := c.sink
	c.mu.Unlock()
	if sink != nil {
		sink.Emit(domain.Event{Kind: kind, Text: text, Time: time.Now()})
	}
}

// clearDir removes the contents of dir, creating it if needed
func clearDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
