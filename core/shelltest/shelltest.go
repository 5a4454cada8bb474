// Package shelltest runs shell sessions against an in-memory filesystem and
// fake programs.
package shelltest

import (
	"bytes"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/josephlewis42/chainsh/core"
	"github.com/josephlewis42/chainsh/core/alias"
	"github.com/josephlewis42/chainsh/core/env"
	"github.com/josephlewis42/chainsh/core/logger"
	"github.com/spf13/afero"
)

// Program is a fake external program, it returns its exit status.
type Program func(cmd *core.Command) int

// BinDir is where the default programs are installed.
const BinDir = "/bin"

// DefaultPrograms are installed into BinDir by New.
var DefaultPrograms = map[string]Program{
	"true": func(*core.Command) int {
		return 0
	},
	"false": func(*core.Command) int {
		return 1
	},
	"echo": func(cmd *core.Command) int {
		fmt.Fprintln(cmd.Stdout, strings.Join(cmd.Args[1:], " "))
		return 0
	},
	// status exits with its first argument.
	"status": func(cmd *core.Command) int {
		if len(cmd.Args) < 2 {
			return 0
		}
		n, err := strconv.Atoi(cmd.Args[1])
		if err != nil {
			return 2
		}
		return n
	},
	"printenv": func(cmd *core.Command) int {
		for _, e := range cmd.Env {
			fmt.Fprintln(cmd.Stdout, e)
		}
		return 0
	},
	"pwd": func(cmd *core.Command) int {
		fmt.Fprintln(cmd.Stdout, cmd.Dir)
		return 0
	},
}

// Harness holds the fakes a test shell runs against.
type Harness struct {
	Fs       afero.Fs
	Programs map[string]Program
	Env      *env.Table
	Aliases  *alias.Table
	// Events receives session events if set.
	Events *logger.Logger

	// Output collects stdout and stderr.
	Output bytes.Buffer
	// Launched holds the argv of every program launched.
	Launched [][]string
}

// New creates a harness with the default programs installed, PATH set to
// BinDir and HOME set to /root.
func New() *Harness {
	h := &Harness{
		Fs:       afero.NewMemMapFs(),
		Programs: make(map[string]Program),
		Env:      env.FromList([]string{"PATH=" + BinDir, "HOME=/root"}),
	}
	h.Aliases, _ = alias.NewTable()
	h.Fs.MkdirAll("/root", 0755)
	h.Fs.MkdirAll("/tmp", 0777)

	for name, prog := range DefaultPrograms {
		h.AddProgram(path.Join(BinDir, name), prog)
	}
	return h
}

// AddProgram installs an executable at path.
func (h *Harness) AddProgram(path string, prog Program) {
	if err := afero.WriteFile(h.Fs, path, nil, 0755); err != nil {
		panic(err)
	}
	h.Programs[path] = prog
}

// Launch implements core.Launcher.
func (h *Harness) Launch(cmd *core.Command) (int, error) {
	prog, ok := h.Programs[cmd.Path]
	if !ok {
		return 0, fmt.Errorf("exec format error")
	}
	h.Launched = append(h.Launched, cmd.Args)
	return prog(cmd), nil
}

var _ core.Launcher = (*Harness)(nil)

// Shell creates a shell session wired to the harness.
func (h *Harness) Shell() *core.Shell {
	var events *logger.SessionLogger
	if h.Events != nil {
		events = h.Events.NewSession()
	}

	s, err := core.NewShell(core.Options{
		Name:     "chainsh",
		Env:      h.Env,
		Aliases:  h.Aliases,
		Fs:       h.Fs,
		Dir:      "/root",
		Launcher: h,
		Events:   events,
		Stdin:    strings.NewReader(""),
		Stdout:   &h.Output,
		Stderr:   &h.Output,
	})
	if err != nil {
		panic(err)
	}
	return s
}

// Run runs script in a new session and returns the shell's exit status.
func (h *Harness) Run(script string) int {
	return h.Shell().Run(core.NewLineReader(strings.NewReader(script)))
}

// CombinedOutput runs script and returns everything it printed.
func (h *Harness) CombinedOutput(script string) ([]byte, int) {
	status := h.Run(script)
	return h.Output.Bytes(), status
}
