package core

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/josephlewis42/chainsh/core/alias"
	"github.com/josephlewis42/chainsh/core/config"
	"github.com/josephlewis42/chainsh/core/env"
	"github.com/josephlewis42/chainsh/core/logger"
	"github.com/josephlewis42/chainsh/core/shell"
	"github.com/spf13/afero"
)

const (
	EnvHome   = "HOME"
	EnvPWD    = "PWD"
	EnvOldPWD = "OLDPWD"
	EnvPath   = "PATH"
	EnvPrompt = "PS1"

	DefaultName   = "chainsh"
	DefaultPrompt = "$ "

	envFailureMessage = "Unable to add/remove from environment"
)

// Exit statuses set by the shell itself.
const (
	StatusSuccess       = 0
	StatusFailure       = 1
	StatusUsage         = 2
	StatusNotExecutable = 126
	StatusNotFound      = 127
)

// Options configures a Shell. Zero values are replaced with defaults that
// talk to the host OS.
type Options struct {
	// Name is used as the prefix of diagnostics.
	Name string
	// Env is the environment table, defaults to a copy of the process's.
	Env *env.Table
	// Aliases is the alias table, defaults to an empty one.
	Aliases *alias.Table
	// Fs is used to resolve commands and working directories.
	Fs afero.Fs
	// Dir is the initial working directory, defaults to the process's.
	Dir string
	// Launcher runs external programs.
	Launcher Launcher
	// Report prints diagnostics, defaults to writing to Stderr.
	Report ErrorReporter
	// Events records session events.
	Events *logger.SessionLogger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive is set when input comes from a terminal.
	Interactive bool
	// ColorPrompt colors the prompt in interactive mode.
	ColorPrompt bool
}

// Shell is a single session. It's not safe for concurrent use.
type Shell struct {
	name     string
	env      *env.Table
	aliases  *alias.Table
	fs       afero.Fs
	dir      string
	launcher Launcher
	report   ErrorReporter
	events   *logger.SessionLogger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	interactive bool
	colorPrompt bool

	lastRet int
	index   int

	// Set to true to quit the shell
	quit   bool
	closed bool
}

// NewShell creates a session from the options.
func NewShell(opts Options) (*Shell, error) {
	s := &Shell{
		name:        opts.Name,
		env:         opts.Env,
		aliases:     opts.Aliases,
		fs:          opts.Fs,
		dir:         opts.Dir,
		launcher:    opts.Launcher,
		report:      opts.Report,
		events:      opts.Events,
		stdin:       opts.Stdin,
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		interactive: opts.Interactive,
		colorPrompt: opts.ColorPrompt,
	}

	if s.name == "" {
		s.name = DefaultName
	}
	if s.env == nil {
		s.env = env.FromOS()
	}
	if s.aliases == nil {
		s.aliases, _ = alias.NewTable()
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		s.dir = wd
	}
	if s.launcher == nil {
		s.launcher = OSLauncher{}
	}
	if s.stdin == nil {
		s.stdin = os.Stdin
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	if s.report == nil {
		s.report = NewErrorReporter(s.stderr)
	}
	if s.events == nil {
		s.events = logger.NewNopLogger().NewSession()
	}

	return s, nil
}

// Init applies the configuration similar to login + source ~/.profile.
func (s *Shell) Init(cfg *config.Configuration) error {
	if cfg.ShellName != "" {
		s.name = cfg.ShellName
	}
	s.colorPrompt = s.colorPrompt && cfg.ColorPrompt

	if _, ok := s.env.LookupEnv(EnvPath); !ok {
		if err := s.env.Setenv(EnvPath, cfg.Path); err != nil {
			return err
		}
	}
	if _, ok := s.env.LookupEnv(EnvPrompt); !ok && cfg.Prompt != "" {
		if err := s.env.Setenv(EnvPrompt, cfg.Prompt); err != nil {
			return err
		}
	}
	for _, v := range cfg.Env {
		if err := s.env.Setenv(v.Name, v.Value); err != nil {
			return err
		}
	}
	for _, a := range cfg.Aliases {
		if err := s.aliases.Set(a.Name, a.Value); err != nil {
			return err
		}
	}
	return s.env.Setenv(EnvPWD, s.dir)
}

// Name returns the name used in diagnostics.
func (s *Shell) Name() string {
	return s.name
}

// Env returns the session's environment table.
func (s *Shell) Env() *env.Table {
	return s.env
}

// Aliases returns the session's alias table.
func (s *Shell) Aliases() *alias.Table {
	return s.aliases
}

// Dir returns the working directory used for commands.
func (s *Shell) Dir() string {
	return s.dir
}

// Status returns the exit status of the last command.
func (s *Shell) Status() int {
	return s.lastRet
}

// Index returns the number of lines read so far.
func (s *Shell) Index() int {
	return s.index
}

// Exited reports whether the exit builtin ran.
func (s *Shell) Exited() bool {
	return s.quit
}

// Prompt returns the prompt shown before reading a line.
func (s *Shell) Prompt() string {
	prompt, ok := s.env.LookupEnv(EnvPrompt)
	if !ok {
		prompt = DefaultPrompt
	}
	if s.colorPrompt {
		return color.New(color.FgGreen, color.Bold).Sprint(prompt)
	}
	return prompt
}

// Run reads and runs lines until input is exhausted or exit is called,
// returning the status the shell should exit with. The reader is closed and
// the session torn down before Run returns.
func (s *Shell) Run(r LineReader) int {
	defer s.Close()
	defer r.Close()

	for !s.quit {
		line, err := r.ReadLine()

		switch {
		case err == io.EOF:
			if s.interactive {
				fmt.Fprintln(s.stdout)
			}
			return s.lastRet // Input closed, quit.

		case errors.Is(err, ErrInterrupted):
			continue

		case err != nil:
			log.Printf("Error reading input: %v", err)
			return s.lastRet

		default:
			s.RunLine(line)
		}
	}
	return s.lastRet
}

// RunLine runs a single line of input.
func (s *Shell) RunLine(line string) {
	s.index++

	stripped, commentOnly := shell.StripComment(line)
	if commentOnly || strings.TrimSpace(stripped) == "" {
		return
	}

	chain, err := shell.NewChain(stripped)
	if err != nil {
		var syntaxErr *shell.SyntaxError
		if errors.As(err, &syntaxErr) {
			s.lastRet = StatusUsage
		} else {
			s.lastRet = StatusFailure
		}
		s.fail(logger.EventSyntaxError, nil, err.Error())
		return
	}

	for !s.quit {
		seg, ok := chain.Next(s.lastRet)
		if !ok {
			return
		}
		s.runSegment(seg.Text)
	}
}

func (s *Shell) runSegment(text string) {
	words := shell.Tokenize(text)
	if words == nil {
		return
	}

	argv := s.expandParams(s.aliases.Expand(words))
	if len(argv) == 0 {
		return
	}

	s.dispatch(argv)
}

// expandParams replaces $NAME, ${NAME}, $? and $$ in each word. Words that
// expand to nothing are dropped. A word with an unclosed "${" is kept as
// written.
func (s *Shell) expandParams(words []string) []string {
	out := make([]string, 0, len(words))
	for _, word := range words {
		if !strings.Contains(word, "$") || unterminatedBrace(word) {
			out = append(out, word)
			continue
		}
		if expanded := os.Expand(word, s.lookupParam); expanded != "" {
			out = append(out, expanded)
		}
	}
	return out
}

func unterminatedBrace(word string) bool {
	for {
		start := strings.Index(word, "${")
		if start < 0 {
			return false
		}
		end := strings.IndexByte(word[start:], '}')
		if end < 0 {
			return true
		}
		word = word[start+end+1:]
	}
}

func (s *Shell) lookupParam(name string) string {
	switch name {
	case "?":
		return strconv.Itoa(s.lastRet)
	case "$":
		return strconv.Itoa(os.Getpid())
	case "0":
		return s.name
	default:
		return s.env.Getenv(name)
	}
}

func (s *Shell) dispatch(argv []string) {
	// Execute builtins
	if builtin, ok := AllBuiltins[argv[0]]; ok {
		s.lastRet = builtin.Main(s, argv)
		s.record(logger.EventBuiltin, argv, "", "")
		return
	}

	execPath, err := LookPath(s.fs, s.dir, s.env.Getenv(EnvPath), argv[0])
	switch {
	case errors.Is(err, ErrNotFound):
		s.lastRet = StatusNotFound
		s.fail(logger.EventUnknownCommand, argv, "not found")
		return
	case err != nil:
		s.lastRet = StatusNotExecutable
		s.fail(logger.EventUnknownCommand, argv, "Permission denied")
		return
	}

	status, err := s.launcher.Launch(&Command{
		Path:   execPath,
		Args:   argv,
		Env:    s.env.Environ(),
		Dir:    s.dir,
		Stdin:  s.stdin,
		Stdout: s.stdout,
		Stderr: s.stderr,
	})
	if err != nil {
		s.lastRet = StatusNotExecutable
		s.fail(logger.EventUnknownCommand, argv, err.Error())
		return
	}

	s.lastRet = status
	s.record(logger.EventRunCommand, argv, execPath, "")
}

// fail prints a diagnostic and records the event. The status must already be
// set.
func (s *Shell) fail(event logger.EventType, argv []string, msg string) {
	s.report(s.name, s.index, argv, msg)
	s.record(event, argv, "", msg)
}

func (s *Shell) record(event logger.EventType, argv []string, resolved, msg string) {
	err := s.events.Record(&logger.LogEntry{
		Type:         event,
		Index:        s.index,
		Command:      argv,
		ResolvedPath: resolved,
		Status:       s.lastRet,
		Message:      msg,
	})
	if err != nil {
		log.Printf("Error recording event: %v", err)
	}
}

// invalidInvocation reports a builtin that was called with bad arguments
// and returns status.
func (s *Shell) invalidInvocation(argv []string, status int, format string, a ...interface{}) int {
	s.lastRet = status
	s.fail(logger.EventInvalidInvocation, argv, fmt.Sprintf(format, a...))
	return status
}

// envFailure reports an environment mutation that couldn't be applied.
func (s *Shell) envFailure(argv []string, err error) int {
	s.lastRet = StatusUsage
	s.report(s.name, s.index, argv, envFailureMessage)
	s.record(logger.EventEnvironmentFailure, argv, "", err.Error())
	return StatusUsage
}

// Close tears down the session's alias and environment tables. It's safe to
// call more than once.
func (s *Shell) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.record(logger.EventExit, nil, "", "")
	s.aliases.Clear()
	s.env.Clearenv()
	return nil
}
