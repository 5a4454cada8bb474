// Package alias holds the shell's alias table and alias substitution.
package alias

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephlewis42/chainsh/core/shell"
)

var (
	// ErrMalformed is returned for a definition that has no name.
	ErrMalformed = errors.New("malformed alias definition")

	// ErrInvalidName is returned for a name that couldn't be typed as a
	// command.
	ErrInvalidName = errors.New("invalid alias name")
)

// Alias is a single name to replacement text mapping.
type Alias struct {
	Name  string
	Value string
}

// String formats the alias the way the alias builtin lists it.
func (a Alias) String() string {
	return fmt.Sprintf("%s=%s", a.Name, quote(a.Value))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Table is an ordered set of aliases. Listing returns entries in the order
// they were first defined; redefining a name keeps its position.
type Table struct {
	entries []Alias
	index   map[string]int
}

// NewTable creates a table holding the given aliases.
func NewTable(defaults ...Alias) (*Table, error) {
	t := &Table{}
	for _, a := range defaults {
		if err := t.Set(a.Name, a.Value); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ValidateName checks that name can be used as an alias.
func ValidateName(name string) error {
	switch {
	case name == "":
		return ErrMalformed
	case strings.ContainsAny(name, "= \t\n/$#;&|"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Set inserts or overwrites an alias.
func (t *Table) Set(name, value string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if i, ok := t.index[name]; ok {
		t.entries[i].Value = value
		return nil
	}

	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[name] = len(t.entries)
	t.entries = append(t.entries, Alias{Name: name, Value: value})
	return nil
}

// Get returns the replacement text for name.
func (t *Table) Get(name string) (string, bool) {
	i, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.entries[i].Value, true
}

// Remove deletes name from the table, reporting whether it was present.
func (t *Table) Remove(name string) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}

	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	delete(t.index, name)
	for j := i; j < len(t.entries); j++ {
		t.index[t.entries[j].Name] = j
	}
	return true
}

// List returns a copy of the aliases in insertion order.
func (t *Table) List() []Alias {
	out := make([]Alias, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of aliases.
func (t *Table) Len() int {
	return len(t.entries)
}

// Clear removes every alias.
func (t *Table) Clear() {
	t.entries = nil
	t.index = nil
}

// Expand substitutes an alias for the first word. The replacement is split
// into words so it may carry arguments, and it is never expanded again even
// if it starts with another alias. The input is not modified.
func (t *Table) Expand(words []string) []string {
	if len(words) == 0 {
		return words
	}

	value, ok := t.Get(words[0])
	if !ok {
		out := make([]string, len(words))
		copy(out, words)
		return out
	}

	out := shell.Tokenize(value)
	return append(out, words[1:]...)
}
