// Package launcher runs node-inspector inside a run-as-node Electron process
// and supervises it until it exits.
package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"

	"github.com/electron-inspector/electron-inspector/internal/config"
	"github.com/electron-inspector/electron-inspector/internal/constants"
	"github.com/electron-inspector/electron-inspector/internal/electron"
	ierrors "github.com/electron-inspector/electron-inspector/internal/errors"
	"github.com/electron-inspector/electron-inspector/internal/logging"
	"github.com/electron-inspector/electron-inspector/internal/nodemodules"
)

var execCommand = exec.Command

// State is the lifecycle state of a launched process.
type State int

const (
	StateSpawning State = iota
	StateRunning
	StateExited
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateSpawning:
		return "spawning"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// TerminateFunc ends the parent once the child has exited. The default is
// os.Exit; tests substitute a recorder.
type TerminateFunc func(exitCode int)

type eventKind int

const (
	eventSpawned eventKind = iota
	eventSpawnError
	eventMessage
	eventExit
)

type event struct {
	kind     eventKind
	message  Message
	err      error
	exitCode int
}

// Launcher starts node-inspector.
type Launcher struct {
	logger    zerolog.Logger
	resolver  *nodemodules.Resolver
	terminate TerminateFunc

	// Stdin, Stdout and Stderr are inherited by the child.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewLauncher creates a launcher that finds node-inspector through resolver.
// A nil terminate means os.Exit.
func NewLauncher(logger zerolog.Logger, resolver *nodemodules.Resolver, terminate TerminateFunc) *Launcher {
	if terminate == nil {
		terminate = os.Exit
	}
	return &Launcher{
		logger:    logging.Component(logger, "launcher"),
		resolver:  resolver,
		terminate: terminate,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// Launch starts node-inspector with Electron as its runtime and returns
// without waiting. Every outcome, including a failure to spawn, is reported
// through the returned Process. Cancelling ctx interrupts the child.
func (l *Launcher) Launch(ctx context.Context, info electron.Info, opts config.Options) *Process {
	p := &Process{
		logger:    l.logger,
		terminate: l.terminate,
		state:     StateSpawning,
		events:    make(chan event, 16),
		done:      make(chan struct{}),
	}

	go p.supervise()
	go p.spawn(ctx, l, info, Args(opts))

	return p
}

// Process is a launched node-inspector. Its state moves from Spawning to
// Running, and from either to Exited or Errored; all transitions happen on a
// single supervising goroutine fed by an event channel.
type Process struct {
	logger    zerolog.Logger
	terminate TerminateFunc

	mu       sync.Mutex
	state    State
	exitCode int
	err      error
	cmd      *exec.Cmd

	events chan event
	done   chan struct{}
}

// State returns the current state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ExitCode returns the child's exit code once it has exited.
func (p *Process) ExitCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode, p.state == StateExited
}

// Err returns the spawn error of an errored process.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Done is closed once the process reaches Exited or Errored. For an exited
// child it closes after the terminate function returns.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until Done and returns the final state.
func (p *Process) Wait() State {
	<-p.done
	return p.State()
}

func (p *Process) spawn(ctx context.Context, l *Launcher, info electron.Info, args []string) {
	script, err := l.resolver.File(constants.InspectorScript)
	if err != nil {
		p.events <- event{kind: eventSpawnError, err: fmt.Errorf("failed to find node-inspector: %w", err)}
		return
	}

	// #nosec G204 -- runs the located Electron binary on node-inspector's entry point.
	cmd := execCommand(info.ExecutablePath, append([]string{script}, args...)...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	cmd.Env = info.RunAsNodeEnviron(os.Environ())

	parent, child, err := newChannel()
	if err != nil {
		p.logger.Warn().Err(err).Msg("Launching without an IPC channel, server events will not be reported")
	} else {
		cmd.ExtraFiles = []*os.File{child}
		cmd.Env = append(cmd.Env, "NODE_CHANNEL_FD=3", "NODE_CHANNEL_SERIALIZATION_MODE=json")
	}

	p.logger.Debug().Str("electron", info.ExecutablePath).Str("script", script).Strs("args", args).Msg("Spawning node-inspector")

	startErr := cmd.Start()
	if child != nil {
		ierrors.DeferClose(p.logger, child, "failed to close child end of ipc channel")
	}
	if startErr != nil {
		if parent != nil {
			ierrors.DeferClose(p.logger, parent, "failed to close ipc channel")
		}
		p.events <- event{kind: eventSpawnError, err: startErr}
		return
	}

	p.mu.Lock()
	p.cmd = cmd
	p.mu.Unlock()
	p.events <- event{kind: eventSpawned}

	var readerDone chan struct{}
	if parent != nil {
		readerDone = make(chan struct{})
		go p.readMessages(parent, readerDone)
	}

	exited := make(chan struct{})
	go p.interruptOnCancel(ctx, exited)

	waitErr := cmd.Wait()
	close(exited)
	if readerDone != nil {
		<-readerDone
	}

	code, ok := ierrors.ExitCode(waitErr)
	if !ok {
		p.logger.Warn().Err(waitErr).Msg("node-inspector ended without an exit status")
		code = 1
	}
	p.events <- event{kind: eventExit, exitCode: code}
}

// readMessages forwards newline-delimited JSON messages until the child
// closes its end of the channel.
func (p *Process) readMessages(channel *os.File, done chan<- struct{}) {
	defer close(done)
	defer ierrors.DeferClose(p.logger, channel, "failed to close ipc channel")

	scanner := bufio.NewScanner(channel)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		msg, ok := ParseMessage(scanner.Bytes())
		if !ok {
			p.logger.Debug().Str("line", scanner.Text()).Msg("Ignoring malformed ipc message")
			continue
		}
		p.events <- event{kind: eventMessage, message: msg}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		p.logger.Debug().Err(err).Msg("ipc channel read failed")
	}
}

func (p *Process) interruptOnCancel(ctx context.Context, exited <-chan struct{}) {
	select {
	case <-exited:
	case <-ctx.Done():
		p.mu.Lock()
		cmd := p.cmd
		p.mu.Unlock()
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			// Windows cannot deliver os.Interrupt.
			_ = cmd.Process.Kill()
		}
	}
}

// supervise applies events in order until the process is terminal.
func (p *Process) supervise() {
	for ev := range p.events {
		switch ev.kind {
		case eventSpawned:
			p.setState(StateRunning)

		case eventSpawnError:
			p.mu.Lock()
			p.state = StateErrored
			p.err = ev.err
			p.mu.Unlock()
			p.logger.Error().Err(ev.err).Msg("Failed to start node-inspector")
			close(p.done)
			return

		case eventMessage:
			p.handleMessage(ev.message)

		case eventExit:
			p.mu.Lock()
			p.state = StateExited
			p.exitCode = ev.exitCode
			p.mu.Unlock()
			p.logger.Debug().Int("exit_code", ev.exitCode).Msg("node-inspector exited")
			p.terminate(ev.exitCode)
			close(p.done)
			return
		}
	}
}

func (p *Process) handleMessage(msg Message) {
	switch msg.Event {
	case EventServerListening:
		p.logger.Info().Str("url", msg.URL).Msgf("Visit %s to start debugging.", msg.URL)
	case EventServerError:
		p.logger.Error().Str("code", msg.Code).Msgf("Cannot start the server: %s.", msg.Code)
	default:
		p.logger.Trace().Str("event", msg.Event).Msg("Ignoring ipc message")
	}
}

func (p *Process) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}
