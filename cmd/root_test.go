package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/josephlewis42/chainsh/core/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invocation struct {
	fs     afero.Fs
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newInvocation() *invocation {
	return &invocation{fs: afero.NewMemMapFs()}
}

func (inv *invocation) run(t *testing.T, opts runOptions) int {
	t.Helper()

	opts.ConfigDir = "/etc/chainsh"
	if opts.Stdin == nil {
		opts.Stdin = strings.NewReader("")
	}
	opts.Stdout = &inv.stdout
	opts.Stderr = &inv.stderr

	status, err := runShell(inv.fs, opts)
	require.NoError(t, err)
	return status
}

func command(line string) *string {
	return &line
}

func TestRunShell_stdin(t *testing.T) {
	inv := newInvocation()
	status := inv.run(t, runOptions{Stdin: strings.NewReader("alias\nexit 4\n")})

	assert.Equal(t, 4, status)
	assert.Equal(t, "ll='ls -l'\nla='ls -A'\n", inv.stdout.String())
	assert.Empty(t, inv.stderr.String())
}

func TestRunShell_command(t *testing.T) {
	inv := newInvocation()

	assert.Equal(t, 0, inv.run(t, runOptions{Command: command("setenv A 1 && exit")}))
	assert.Equal(t, 3, inv.run(t, runOptions{Command: command("unalias ll; exit 3")}))
	assert.Equal(t, 127, inv.run(t, runOptions{Command: command("nosuch")}))
	assert.Equal(t, "chainsh: 1: nosuch: not found\n", inv.stderr.String())
}

func TestRunShell_script(t *testing.T) {
	inv := newInvocation()
	require.NoError(t, afero.WriteFile(inv.fs, "/script.sh", []byte("# comment\nalias ll\nunalias nope\n"), 0644))

	status := inv.run(t, runOptions{Script: "/script.sh"})

	assert.Equal(t, 1, status)
	assert.Equal(t, "ll='ls -l'\n", inv.stdout.String())
	assert.Equal(t, "chainsh: 3: unalias: nope not found\n", inv.stderr.String())
}

func TestRunShell_missingScript(t *testing.T) {
	inv := newInvocation()
	status := inv.run(t, runOptions{Script: "/missing.sh", Stdin: strings.NewReader("exit 9\n")})

	assert.Equal(t, 2, status)
	assert.Equal(t, "chainsh: 0: Can't open /missing.sh\n", inv.stderr.String())
	assert.Empty(t, inv.stdout.String())
}

func TestRunShell_configuration(t *testing.T) {
	inv := newInvocation()
	cfg := `prompt: "> "
color_prompt: false
shell_name: mysh
path: /bin
env:
- name: GREETING
  value: hi
aliases:
- name: greet
  value: setenv GREETING
event_log: events.log
`
	require.NoError(t, afero.WriteFile(inv.fs, "/etc/chainsh/config.yaml", []byte(cfg), 0600))

	status := inv.run(t, runOptions{Command: command("greet hello && alias && nosuch")})
	assert.Equal(t, 127, status)
	assert.Equal(t, "greet='setenv GREETING'\n", inv.stdout.String())
	assert.Equal(t, "mysh: 1: nosuch: not found\n", inv.stderr.String())

	loaded, err := config.LoadFs(inv.fs, "/etc/chainsh")
	require.NoError(t, err)

	var report bytes.Buffer
	require.NoError(t, writeReport(loaded, &report))
	assert.Contains(t, report.String(), "log_entries: 4\n")
	assert.Contains(t, report.String(), "nosuch: 1\n")
}

func TestRunShell_invalidConfiguration(t *testing.T) {
	inv := newInvocation()
	require.NoError(t, afero.WriteFile(inv.fs, "/etc/chainsh/config.yaml", []byte("path: /bin\nunknown: 1\n"), 0600))

	_, err := runShell(inv.fs, runOptions{ConfigDir: "/etc/chainsh", Command: command("exit")})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	fsys := afero.NewMemMapFs()

	cfg, err := loadConfig(fsys, "/uninitialized")
	require.NoError(t, err)
	assert.Equal(t, config.Default().Aliases, cfg.Aliases)

	require.NoError(t, afero.WriteFile(fsys, "/etc/chainsh/config.yaml", []byte("path: /opt/bin\n"), 0600))
	cfg, err = loadConfig(fsys, "/etc/chainsh")
	require.NoError(t, err)
	assert.Equal(t, "/opt/bin", cfg.Path)
	assert.Empty(t, cfg.Aliases)
}
