package alias

import (
	"fmt"
	"strings"
)

// Operand is a single request to the alias builtin, either a lookup or a
// definition.
type Operand struct {
	Name   string
	Value  string
	Define bool
}

// ParseDefinition parses a single "name=value" definition. The value is
// taken verbatim.
func ParseDefinition(def string) (Alias, error) {
	name, value, ok := strings.Cut(def, "=")
	if !ok {
		return Alias{}, fmt.Errorf("%w: %q", ErrMalformed, def)
	}
	if err := ValidateName(name); err != nil {
		return Alias{}, err
	}
	return Alias{Name: name, Value: value}, nil
}

// ParseOperands groups the alias builtin's arguments. Words aren't quoted
// by the tokenizer so a definition's value runs over the following
// arguments until one contains '='; one pair of matching quotes around the
// value is removed. Arguments before the first definition are lookups.
func ParseOperands(args []string) ([]Operand, error) {
	var out []Operand
	for i := 0; i < len(args); i++ {
		if !strings.Contains(args[i], "=") {
			out = append(out, Operand{Name: args[i]})
			continue
		}

		def, err := ParseDefinition(args[i])
		if err != nil {
			return nil, err
		}

		value := []string{def.Value}
		for i+1 < len(args) && !strings.Contains(args[i+1], "=") {
			i++
			value = append(value, args[i])
		}

		out = append(out, Operand{
			Name:   def.Name,
			Value:  unquote(strings.Join(value, " ")),
			Define: true,
		})
	}
	return out, nil
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	if q := s[0]; (q == '\'' || q == '"') && s[len(s)-1] == q {
		return s[1 : len(s)-1]
	}
	return s
}
