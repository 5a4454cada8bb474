// Package env holds the shell's environment table.
package env

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrOperation is returned when a mutation of the table can't be applied.
// The table is left unchanged when it is returned.
var ErrOperation = errors.New("unable to add/remove from environment")

// EnvironFetcher is anything that can list variables in "key=value" form.
type EnvironFetcher interface {
	// Environ returns a copy of strings representing the environment, in the
	// form "key=value".
	Environ() []string
}

// List adapts a slice of "key=value" strings to an EnvironFetcher.
type List []string

// Environ implements EnvironFetcher.Environ.
func (l List) Environ() []string {
	return []string(l)
}

// CopyEnv copies all the environment variables from src to dst, stopping at
// the first one that can't be set.
func CopyEnv(dst *Table, src EnvironFetcher) error {
	for _, e := range src.Environ() {
		key, value := splitPair(e)
		if err := dst.Setenv(key, value); err != nil {
			return err
		}
	}

	return nil
}

// New creates an empty table.
func New() *Table {
	return &Table{}
}

// FromOS creates a table seeded from the host process environment.
func FromOS() *Table {
	return FromList(os.Environ())
}

// FromList creates a table from "key=value" strings. Entries without a valid
// name are dropped.
func FromList(environ []string) *Table {
	out := New()
	for _, e := range environ {
		key, value := splitPair(e)
		_ = out.Setenv(key, value)
	}
	return out
}

func splitPair(e string) (key, value string) {
	split := strings.SplitN(e, "=", 2)
	key = split[0]
	if len(split) > 1 {
		value = split[1]
	}
	return
}

// Table is an in-memory environment. It's owned by a single shell session
// and is not safe for concurrent use.
type Table struct {
	env map[string]string

	// environ is the materialized form, nil when stale.
	environ []string
}

func validate(key, value string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: empty variable name", ErrOperation)
	case strings.ContainsAny(key, "=\x00"):
		return fmt.Errorf("%w: invalid variable name %q", ErrOperation, key)
	case strings.ContainsRune(value, 0):
		return fmt.Errorf("%w: invalid value for %q", ErrOperation, key)
	}
	return nil
}

// Setenv sets the value of the variable named by the key, replacing any
// existing value.
func (t *Table) Setenv(key, value string) error {
	if err := validate(key, value); err != nil {
		return err
	}

	if t.env == nil {
		t.env = make(map[string]string)
	}
	t.env[key] = value
	t.environ = nil
	return nil
}

// Unsetenv removes a single variable. Removing a variable that isn't set
// succeeds.
func (t *Table) Unsetenv(key string) error {
	if err := validate(key, ""); err != nil {
		return err
	}
	if _, ok := t.env[key]; !ok {
		return nil
	}
	delete(t.env, key)
	t.environ = nil
	return nil
}

// LookupEnv retrieves the value of the variable named by the key and whether
// it was present.
func (t *Table) LookupEnv(key string) (string, bool) {
	val, ok := t.env[key]
	return val, ok
}

// Getenv retrieves the value of the variable named by the key, empty if it
// isn't set.
func (t *Table) Getenv(key string) string {
	val, _ := t.LookupEnv(key)
	return val
}

// ExpandEnv replaces ${var} or $var in the string using the table.
func (t *Table) ExpandEnv(s string) string {
	return os.Expand(s, t.Getenv)
}

// Len returns the number of variables in the table.
func (t *Table) Len() int {
	return len(t.env)
}

// Environ returns the variables in sorted "key=value" form. The result is
// rebuilt after every change to the table and callers get their own copy.
func (t *Table) Environ() []string {
	if t.environ == nil {
		t.environ = make([]string, 0, len(t.env))
		for k, v := range t.env {
			t.environ = append(t.environ, k+"="+v)
		}
		sort.Strings(t.environ)
	}

	out := make([]string, len(t.environ))
	copy(out, t.environ)
	return out
}

// Clearenv deletes all variables.
func (t *Table) Clearenv() {
	t.env = nil
	t.environ = nil
}

var _ EnvironFetcher = (*Table)(nil)
