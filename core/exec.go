package core

import (
	"errors"
	"io"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/afero"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

func findExecutable(fsys afero.Fs, file string) error {
	d, err := fsys.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories named by
// path. If file contains a slash, it is tried directly and path is not
// consulted. Relative results are resolved against dir.
func LookPath(fsys afero.Fs, dir, path, file string) (string, error) {
	if strings.Contains(file, "/") {
		file = resolve(dir, file)
		err := findExecutable(fsys, file)
		if err == nil {
			return file, nil
		}
		return "", err
	}
	for _, elem := range filepath.SplitList(path) {
		if elem == "" {
			// Unix shell semantics: path element "" means "."
			elem = "."
		}
		candidate := resolve(dir, filepath.Join(elem, file))
		if err := findExecutable(fsys, candidate); err == nil {
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

func resolve(dir, file string) string {
	if filepath.IsAbs(file) || dir == "" {
		return file
	}
	return filepath.Join(dir, file)
}

// Command is an external program ready to launch.
type Command struct {
	// Path is the resolved path of the program.
	Path string
	// Args holds command line arguments, including the command as Args[0].
	Args []string
	// Env is the materialized environment in "key=value" form.
	Env []string
	// Dir is the working directory of the program.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Launcher starts a program and blocks until it exits, returning its exit
// status. An error means the program couldn't be started.
type Launcher interface {
	Launch(cmd *Command) (int, error)
}

// LauncherFunc adapts a function to a Launcher.
type LauncherFunc func(cmd *Command) (int, error)

// Launch implements Launcher.
func (f LauncherFunc) Launch(cmd *Command) (int, error) {
	return f(cmd)
}

// OSLauncher runs programs as child processes of the shell.
type OSLauncher struct{}

var _ Launcher = OSLauncher{}

// Launch implements Launcher.
func (OSLauncher) Launch(c *Command) (int, error) {
	cmd := &exec.Cmd{
		Path:   c.Path,
		Args:   c.Args,
		Env:    c.Env,
		Dir:    c.Dir,
		Stdin:  c.Stdin,
		Stdout: c.Stdout,
		Stderr: c.Stderr,
	}

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitStatus(exitErr), nil
	default:
		return 0, err
	}
}

func exitStatus(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}
