package core

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/abiosoft/readline"
)

// ErrInterrupted is returned by a LineReader when the line being edited was
// discarded. Nothing was read and the reader can be used again.
var ErrInterrupted = errors.New("interrupted")

// LineReader yields one line of input at a time without the trailing
// newline, returning io.EOF once input is exhausted.
type LineReader interface {
	ReadLine() (string, error)
	Close() error
}

// NewLineReader reads lines from a script or pipe. r is closed with the
// reader if it's an io.Closer.
func NewLineReader(r io.Reader) LineReader {
	closer, _ := r.(io.Closer)
	return &bufferedLineReader{r: bufio.NewReader(r), closer: closer}
}

type bufferedLineReader struct {
	r      *bufio.Reader
	closer io.Closer
}

func (b *bufferedLineReader) ReadLine() (string, error) {
	line, err := b.r.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && line == "":
		return "", io.EOF
	case err != nil && !errors.Is(err, io.EOF):
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *bufferedLineReader) Close() error {
	if b.closer == nil {
		return nil
	}
	closer := b.closer
	b.closer = nil
	return closer.Close()
}

// TerminalConfig configures an interactive LineReader.
type TerminalConfig struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Prompt is called before each line is read.
	Prompt func() string
}

// NewTerminalLineReader creates a LineReader that edits lines on a terminal.
// An interrupt discards the line being edited and returns ErrInterrupted.
func NewTerminalLineReader(tc TerminalConfig) (LineReader, error) {
	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(tc.Stdin),
		Stdout: tc.Stdout,
		Stderr: tc.Stderr,
		// Command history isn't kept.
		HistoryLimit: -1,
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	instance, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	return &terminalLineReader{instance: instance, prompt: tc.Prompt}, nil
}

type terminalLineReader struct {
	instance *readline.Instance
	prompt   func() string
}

func (t *terminalLineReader) ReadLine() (string, error) {
	if t.prompt != nil {
		t.instance.SetPrompt(t.prompt())
	}
	line, err := t.instance.Readline()
	if err == readline.ErrInterrupt {
		return "", ErrInterrupted
	}
	return line, err
}

func (t *terminalLineReader) Close() error {
	return t.instance.Close()
}
