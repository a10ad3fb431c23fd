package bridge

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"mvdan.cc/sh/v3/shell"
)

const DefaultInterpreter = "R --vanilla --no-echo"

const maxVariableNameSize = 256

const closeGracePeriod = 2 * time.Second

// ParseCommandLine splits an interpreter command line the way a POSIX shell
// would, expanding environment variables.
func ParseCommandLine(line string) ([]string, error) {
	args, err := shell.Fields(line, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("unable to parse interpreter command line '%s': %w", line, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("interpreter command line is empty")
	}
	return args, nil
}

type process interface {
	Wait() error
	Kill() error
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p execProcess) Wait() error { return p.cmd.Wait() }
func (p execProcess) Kill() error { return p.cmd.Process.Kill() }

// RSession is an Environment backed by a long-lived R process talking over
// stdin/stdout. It is not safe for concurrent use; wrap it in a Bridge.
type RSession struct {
	stdin io.WriteCloser
	proc  process

	lines  chan string
	done   chan struct{}
	exited chan struct{}

	waitErr error
	closed  bool
	readers sync.WaitGroup
	wg      sync.WaitGroup
}

// StartR launches the interpreter described by args and waits until it
// answers a first request.
func StartR(ctx context.Context, args []string) (*RSession, error) {

	if len(args) == 0 {
		return nil, fmt.Errorf("interpreter command is empty")
	}

	cmd := exec.Command(args[0], args[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("unable to get interpreter stdin: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("unable to get interpreter stdout: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("unable to get interpreter stderr: %w", err)
	}

	if startErr := cmd.Start(); startErr != nil {
		return nil, fmt.Errorf("unable to start interpreter %s: %w", args[0], startErr)
	}

	slog.Info("foreign interpreter started", "command", strings.Join(args, " "), "pid", cmd.Process.Pid)

	session := newRSession(stdin, stdout, stderr, execProcess{cmd: cmd})

	if warmupErr := session.Exec(ctx, "options(warn = 1)"); warmupErr != nil {
		session.Close()
		return nil, fmt.Errorf("interpreter did not answer: %w", warmupErr)
	}

	return session, nil
}

func newRSession(stdin io.WriteCloser, stdout io.Reader, stderr io.Reader, proc process) *RSession {

	s := &RSession{
		stdin:  stdin,
		proc:   proc,
		lines:  make(chan string, 64),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	s.readers.Add(2)
	s.wg.Add(3)
	go s.readStdout(stdout)
	go s.readStderr(stderr)
	go s.wait()

	return s
}

// wait reaps the process once both pipes reached EOF, Wait closes them.
func (s *RSession) wait() {
	defer s.wg.Done()

	s.readers.Wait()
	s.waitErr = s.proc.Wait()
	close(s.exited)
}

func (s *RSession) readStdout(stdout io.Reader) {
	defer s.wg.Done()
	defer s.readers.Done()
	defer close(s.lines)

	reader := bufio.NewReaderSize(stdout, 64*1024)
	draining := false

	// keeps draining to EOF once done
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 && !draining {
			select {
			case s.lines <- strings.TrimRight(line, "\r\n"):
			case <-s.done:
				draining = true
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *RSession) readStderr(stderr io.Reader) {
	defer s.wg.Done()
	defer s.readers.Done()

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		slog.Warn("foreign stderr", "line", scanner.Text())
	}
}

// poison kills the interpreter after a request was abandoned midway;
// its state can no longer be trusted.
func (s *RSession) poison() {
	if s.closed {
		return
	}
	s.closed = true

	close(s.done)
	s.stdin.Close()
	if killErr := s.proc.Kill(); killErr != nil {
		slog.Debug("unable to kill foreign interpreter", "err", killErr.Error())
	}
}

func (s *RSession) request(ctx context.Context, token string, lines []string) (reply, error) {

	if s.closed {
		return reply{}, ErrSessionClosed
	}

	written := make(chan error, 1)

	// writes can block on a full stdin pipe, ctx still bounds the request
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for _, line := range lines {
			if _, err := io.WriteString(s.stdin, line); err != nil {
				written <- err
				return
			}
		}
		written <- nil
	}()

	for {
		select {
		case writeErr := <-written:
			written = nil
			if writeErr != nil {
				s.poison()
				return reply{}, fmt.Errorf("%w: unable to write to interpreter: %s", ErrSessionClosed, writeErr.Error())
			}

		case <-ctx.Done():
			s.poison()
			return reply{}, fmt.Errorf("foreign call abandoned: %w", ctx.Err())

		case line, ok := <-s.lines:
			if !ok {
				s.poison()
				return reply{}, fmt.Errorf("%w: interpreter exited", ErrSessionClosed)
			}

			if res, isReply := parseReply(token, line); isReply {
				return res, nil
			}

			if line != "" {
				slog.Info("foreign output", "line", line)
			}
		}
	}
}

func (s *RSession) Exec(ctx context.Context, snippet string) error {

	token := uuid.NewString()

	res, err := s.request(ctx, token, execRequest(token, snippet))
	if err != nil {
		return err
	}

	switch res.status {
	case statusOK:
		return nil
	case statusErr:
		return &EnvironmentError{Snippet: snippet, Message: res.payload}
	default:
		return fmt.Errorf("unexpected interpreter reply status '%s'", res.status)
	}
}

func (s *RSession) Export(ctx context.Context, name string) ([]byte, error) {

	if name == "" || len(name) > maxVariableNameSize {
		return nil, &LookupError{Name: name}
	}

	token := uuid.NewString()

	res, err := s.request(ctx, token, exportRequest(token, name))
	if err != nil {
		return nil, err
	}

	switch res.status {
	case statusValue:
		stream, decodeErr := hex.DecodeString(res.payload)
		if decodeErr != nil {
			return nil, &ConversionError{Column: name, Reason: fmt.Sprintf("malformed interchange payload: %s", decodeErr.Error())}
		}
		return stream, nil
	case statusMissing:
		return nil, &LookupError{Name: name}
	case statusConv:
		return nil, &ConversionError{Column: name, Reason: res.payload}
	case statusErr:
		return nil, &EnvironmentError{Message: res.payload}
	default:
		return nil, fmt.Errorf("unexpected interpreter reply status '%s'", res.status)
	}
}

func (s *RSession) Import(ctx context.Context, name string, stream []byte) error {

	if name == "" || len(name) > maxVariableNameSize {
		return fmt.Errorf("invalid variable name '%s'", name)
	}

	token := uuid.NewString()

	res, err := s.request(ctx, token, importRequest(token, name, hex.EncodeToString(stream)))
	if err != nil {
		return err
	}

	switch res.status {
	case statusOK:
		return nil
	case statusErr:
		return &EnvironmentError{Message: res.payload}
	default:
		return fmt.Errorf("unexpected interpreter reply status '%s'", res.status)
	}
}

// Close asks the interpreter to quit and kills it if it does not exit in time.
func (s *RSession) Close() error {

	if !s.closed {
		s.closed = true

		close(s.done)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			io.WriteString(s.stdin, "quit(save = \"no\", status = 0)\n")
			s.stdin.Close()
		}()

		select {
		case <-s.exited:
		case <-time.After(closeGracePeriod):
			slog.Warn("foreign interpreter did not exit, killing it")
			s.proc.Kill()
		}
	}

	s.wg.Wait()

	return nil
}
