package core

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/josephlewis42/chainsh/core/alias"
	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

// ShellBuiltin is a command that runs inside the shell process. Main
// returns the command's exit status.
type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// BuiltinNames returns the sorted names of the builtins.
func BuiltinNames() []string {
	var out []string
	for k := range AllBuiltins {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Exit quits the shell with the given status, or the last status if none is
// given.
func Exit(s *Shell, args []string) int {
	status := s.lastRet
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return s.invalidInvocation(args, StatusUsage, "Illegal number: %s", args[1])
		}
		status = n & 0xff
	}

	s.quit = true
	return status
}

// Env prints the environment.
func Env(s *Shell, args []string) int {
	if len(args) > 1 {
		return s.invalidInvocation(args, StatusFailure, "usage: env")
	}

	for _, envDef := range s.env.Environ() {
		fmt.Fprintln(s.stdout, envDef)
	}
	return 0
}

// Setenv sets or replaces a single variable.
func Setenv(s *Shell, args []string) int {
	var value string
	switch len(args) {
	case 3:
		value = args[2]
	case 2:
	default:
		return s.invalidInvocation(args, StatusFailure, "usage: setenv VARIABLE [VALUE]")
	}

	if err := s.env.Setenv(args[1], value); err != nil {
		return s.envFailure(args, err)
	}
	return 0
}

// Unsetenv removes variables, names that aren't set are ignored.
func Unsetenv(s *Shell, args []string) int {
	if len(args) < 2 {
		return s.invalidInvocation(args, StatusFailure, "usage: unsetenv VARIABLE...")
	}

	for _, name := range args[1:] {
		if err := s.env.Unsetenv(name); err != nil {
			return s.envFailure(args, err)
		}
	}
	return 0
}

// Export sets variables given as NAME=VALUE, or lists them all.
func Export(s *Shell, args []string) int {
	opts := getopt.New()
	printOpt := opts.Bool('p', "print all exported variables")
	if err := opts.Getopt(args, nil); err != nil {
		return s.invalidInvocation(args, StatusUsage, "%v", err)
	}

	if *printOpt || len(opts.Args()) == 0 {
		for _, envDef := range s.env.Environ() {
			a := strings.SplitN(envDef, "=", 2)
			fmt.Fprintf(s.stdout, "export %s\n", alias.Alias{Name: a[0], Value: a[1]})
		}
		return 0
	}

	for _, arg := range opts.Args() {
		name, value, hasValue := strings.Cut(arg, "=")
		if !hasValue {
			// Every variable is already exported.
			continue
		}
		if err := s.env.Setenv(name, value); err != nil {
			return s.envFailure(args, err)
		}
	}
	return 0
}

// Unset removes variables.
func Unset(s *Shell, args []string) int {
	opts := getopt.New()
	opts.Bool('f', "treat NAME as a function")
	opts.Bool('v', "treat NAME as a variable")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil {
		return s.invalidInvocation(args, StatusUsage, "%v", err)
	}
	if *helpOpt {
		w := s.stdout
		fmt.Fprintln(w, "usage: unset [-fv] [NAME...]")
		fmt.Fprintln(w, "Unset shell variables.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		return 0
	}

	for _, name := range opts.Args() {
		if err := s.env.Unsetenv(name); err != nil {
			return s.envFailure(args, err)
		}
	}
	return 0
}

// Alias defines or prints aliases.
func Alias(s *Shell, args []string) int {
	opts := getopt.New()
	printOpt := opts.Bool('p', "print all aliases in a reusable format")
	if err := opts.Getopt(args, nil); err != nil {
		return s.invalidInvocation(args, StatusUsage, "%v", err)
	}

	prefix := ""
	if *printOpt {
		prefix = "alias "
	}

	operands, err := alias.ParseOperands(opts.Args())
	if err != nil {
		return s.invalidInvocation(args, StatusFailure, "%v", err)
	}

	if len(operands) == 0 {
		for _, a := range s.aliases.List() {
			fmt.Fprintf(s.stdout, "%s%s\n", prefix, a)
		}
		return 0
	}

	status := 0
	for _, op := range operands {
		if op.Define {
			if err := s.aliases.Set(op.Name, op.Value); err != nil {
				status = s.invalidInvocation(args, StatusFailure, "%v", err)
			}
			continue
		}

		value, ok := s.aliases.Get(op.Name)
		if !ok {
			status = s.invalidInvocation(args, StatusFailure, "%s not found", op.Name)
			continue
		}
		fmt.Fprintf(s.stdout, "%s%s\n", prefix, alias.Alias{Name: op.Name, Value: value})
	}
	return status
}

// Unalias removes aliases.
func Unalias(s *Shell, args []string) int {
	opts := getopt.New()
	allOpt := opts.Bool('a', "remove all aliases")
	if err := opts.Getopt(args, nil); err != nil {
		return s.invalidInvocation(args, StatusUsage, "%v", err)
	}

	if *allOpt {
		s.aliases.Clear()
		return 0
	}

	if len(opts.Args()) == 0 {
		return s.invalidInvocation(args, StatusUsage, "usage: unalias [-a] name [name ...]")
	}

	status := 0
	for _, name := range opts.Args() {
		if !s.aliases.Remove(name) {
			status = s.invalidInvocation(args, StatusFailure, "%s not found", name)
		}
	}
	return status
}

// Cd changes the shell's working directory.
func Cd(s *Shell, args []string) int {
	var target string
	printDir := false
	switch len(args) {
	case 1:
		target = s.env.Getenv(EnvHome)
		if target == "" {
			return 0
		}
	case 2:
		target = args[1]
		if target == "-" {
			target = s.env.Getenv(EnvOldPWD)
			if target == "" {
				target = s.dir
			}
			printDir = true
		}
	default:
		return s.invalidInvocation(args, StatusFailure, "too many arguments")
	}

	target = resolve(s.dir, target)
	if info, err := s.fs.Stat(target); err != nil || !info.IsDir() {
		return s.invalidInvocation(args, StatusUsage, "can't cd to %s", args[len(args)-1])
	}

	old := s.dir
	s.dir = filepath.Clean(target)
	if err := s.env.Setenv(EnvOldPWD, old); err != nil {
		return s.envFailure(args, err)
	}
	if err := s.env.Setenv(EnvPWD, s.dir); err != nil {
		return s.envFailure(args, err)
	}

	if printDir {
		fmt.Fprintln(s.stdout, s.dir)
	}
	return 0
}

// Help lists the builtins.
func Help(s *Shell, args []string) int {
	w := s.stdout
	fmt.Fprintf(w, "%s, a line oriented command interpreter.\n", s.name)
	fmt.Fprintln(w, "These shell commands are defined internally.")
	fmt.Fprintln(w, "Lines may chain commands with ';', '&&' and '||'.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builtins:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Join(BuiltinNames(), "\n"))

	return 0
}

func init() {
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["env"] = ShellBuiltinFunc(Env)
	AllBuiltins["setenv"] = ShellBuiltinFunc(Setenv)
	AllBuiltins["unsetenv"] = ShellBuiltinFunc(Unsetenv)
	AllBuiltins["export"] = ShellBuiltinFunc(Export)
	AllBuiltins["unset"] = ShellBuiltinFunc(Unset)
	AllBuiltins["alias"] = ShellBuiltinFunc(Alias)
	AllBuiltins["unalias"] = ShellBuiltinFunc(Unalias)
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["help"] = ShellBuiltinFunc(Help)
}
