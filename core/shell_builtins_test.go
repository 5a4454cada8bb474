package core_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/josephlewis42/chainsh/core"
	"github.com/josephlewis42/chainsh/core/shelltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleBuiltinNames() {
	fmt.Println(strings.Join(core.BuiltinNames(), " "))

	// Output: alias cd env exit export help setenv unalias unset unsetenv
}

func TestAllBuiltins(t *testing.T) {
	for _, name := range core.BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			if core.AllBuiltins[name] == nil {
				t.Fatal("nil builtin", name)
			}
		})
	}
}

// session runs each line in a fresh shell and returns it without tearing it
// down.
func session(t *testing.T, lines ...string) (*shelltest.Harness, *core.Shell) {
	t.Helper()

	h := shelltest.New()
	s := h.Shell()
	t.Cleanup(func() { s.Close() })

	for _, line := range lines {
		s.RunLine(line)
	}
	return h, s
}

func TestSetenv(t *testing.T) {
	_, s := session(t, "setenv FOO bar", "setenv FOO baz", "setenv EMPTY")

	assert.Equal(t, 0, s.Status())
	assert.Equal(t, "baz", s.Env().Getenv("FOO"))

	value, ok := s.Env().LookupEnv("EMPTY")
	assert.True(t, ok)
	assert.Equal(t, "", value)

	var foos int
	for _, e := range s.Env().Environ() {
		if strings.HasPrefix(e, "FOO=") {
			foos++
		}
	}
	assert.Equal(t, 1, foos)
}

func TestSetenv_usage(t *testing.T) {
	h, s := session(t, "setenv")

	assert.Equal(t, 1, s.Status())
	assert.Equal(t, "chainsh: 1: setenv: usage: setenv VARIABLE [VALUE]\n", h.Output.String())
}

func TestSetenv_failureLeavesTable(t *testing.T) {
	h, s := session(t, "setenv A=B c")

	assert.Equal(t, 2, s.Status())
	assert.Equal(t, "chainsh: 1: setenv: Unable to add/remove from environment\n", h.Output.String())
	assert.Equal(t, 2, s.Env().Len())
}

func TestUnsetenv(t *testing.T) {
	_, s := session(t, "setenv A 1", "setenv B 2", "unsetenv A NEVER_SET")

	assert.Equal(t, 0, s.Status())
	_, ok := s.Env().LookupEnv("A")
	assert.False(t, ok)
	assert.Equal(t, "2", s.Env().Getenv("B"))
}

func TestUnsetenv_usage(t *testing.T) {
	_, s := session(t, "unsetenv")
	assert.Equal(t, 1, s.Status())
}

func TestEnv(t *testing.T) {
	h, s := session(t, "setenv A 1", "env")

	assert.Equal(t, 0, s.Status())
	assert.Equal(t, "A=1\nHOME=/root\nPATH=/bin\n", h.Output.String())
}

func TestEnv_childSeesChanges(t *testing.T) {
	h, _ := session(t, "setenv A 1", "unsetenv HOME", "printenv")
	assert.Equal(t, "A=1\nPATH=/bin\n", h.Output.String())
}

func TestExport(t *testing.T) {
	_, s := session(t, "export A=1 B C=x=y")

	assert.Equal(t, 0, s.Status())
	assert.Equal(t, "1", s.Env().Getenv("A"))
	assert.Equal(t, "x=y", s.Env().Getenv("C"))
	_, ok := s.Env().LookupEnv("B")
	assert.False(t, ok)
}

func TestExport_badOption(t *testing.T) {
	_, s := session(t, "export -z")
	assert.Equal(t, 2, s.Status())
}

func TestUnset(t *testing.T) {
	_, s := session(t, "setenv A 1", "unset -v A NEVER_SET")

	assert.Equal(t, 0, s.Status())
	_, ok := s.Env().LookupEnv("A")
	assert.False(t, ok)
}

func TestUnset_help(t *testing.T) {
	h, s := session(t, "unset --help")

	assert.Equal(t, 0, s.Status())
	assert.True(t, strings.HasPrefix(h.Output.String(), "usage: unset [-fv] [NAME...]\n"))
}

func TestAlias(t *testing.T) {
	cases := map[string]struct {
		lines  []string
		out    string
		status int
	}{
		"list-empty": {
			lines: []string{"alias"},
		},
		"list-ordered": {
			lines: []string{"alias b=2", "alias a=1", "alias b=3", "alias"},
			out:   "b='3'\na='1'\n",
		},
		"print-reusable": {
			lines: []string{"alias ll=ls -l", "alias -p"},
			out:   "alias ll='ls -l'\n",
		},
		"lookup": {
			lines: []string{"alias ll='ls -l'", "alias ll"},
			out:   "ll='ls -l'\n",
		},
		"lookup-quote": {
			lines: []string{`alias say="echo it's"`, "alias say"},
			out:   `say='echo it'\''s'` + "\n",
		},
		"lookup-missing": {
			lines:  []string{"alias nope"},
			out:    "chainsh: 1: alias: nope not found\n",
			status: 1,
		},
		"empty-name": {
			lines:  []string{"alias =ls"},
			status: 1,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			h, s := session(t, tc.lines...)

			if tc.out != "" || tc.status == 0 {
				assert.Equal(t, tc.out, h.Output.String())
			}
			assert.Equal(t, tc.status, s.Status())
		})
	}
}

func TestUnalias(t *testing.T) {
	_, s := session(t, "alias a=1 b=2 c=3", "unalias a c")

	assert.Equal(t, 0, s.Status())
	assert.Equal(t, 1, s.Aliases().Len())

	s.RunLine("unalias a")
	assert.Equal(t, 1, s.Status())

	s.RunLine("unalias -a")
	assert.Equal(t, 0, s.Status())
	assert.Equal(t, 0, s.Aliases().Len())

	s.RunLine("unalias")
	assert.Equal(t, 2, s.Status())
}

func TestCd(t *testing.T) {
	h, s := session(t, "cd /tmp", "pwd", "cd", "pwd", "cd -")

	assert.Equal(t, 0, s.Status())
	assert.Equal(t, "/tmp\n/root\n/tmp\n", h.Output.String())
	assert.Equal(t, "/tmp", s.Dir())
	assert.Equal(t, "/tmp", s.Env().Getenv("PWD"))
	assert.Equal(t, "/root", s.Env().Getenv("OLDPWD"))
}

func TestCd_relative(t *testing.T) {
	h, s := session(t)
	require.NoError(t, h.Fs.MkdirAll("/root/src/app", 0755))

	s.RunLine("cd src/app")
	assert.Equal(t, "/root/src/app", s.Dir())

	s.RunLine("cd ..")
	assert.Equal(t, "/root/src", s.Dir())
}

func TestCd_errors(t *testing.T) {
	h, s := session(t, "cd /missing")

	assert.Equal(t, 2, s.Status())
	assert.Equal(t, "/root", s.Dir())
	assert.Equal(t, "chainsh: 1: cd: can't cd to /missing\n", h.Output.String())

	s.RunLine("cd /bin/echo")
	assert.Equal(t, 2, s.Status())

	s.RunLine("cd a b")
	assert.Equal(t, 1, s.Status())
}

func TestHelp(t *testing.T) {
	h, s := session(t, "help")

	assert.Equal(t, 0, s.Status())
	assert.Contains(t, h.Output.String(), "chainsh, a line oriented command interpreter.\n")
	for _, name := range core.BuiltinNames() {
		assert.Contains(t, h.Output.String(), "\n"+name+"\n")
	}
}
