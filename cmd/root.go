package cmd

import (
	"io"
	"os"

	"github.com/josephlewis42/chainsh/core"
	"github.com/josephlewis42/chainsh/core/config"
	"github.com/josephlewis42/chainsh/core/logger"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	commandLine string
)

// runOptions describes a single invocation of the shell.
type runOptions struct {
	// ConfigDir holds config.yaml.
	ConfigDir string
	// Command is run instead of reading input if set.
	Command *string
	// Script is read instead of stdin if set.
	Script string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// loadConfig reads the configuration in dir, falling back to the built in
// one if dir hasn't been initialized.
func loadConfig(fsys afero.Fs, dir string) (*config.Configuration, error) {
	return config.LoadOrDefault(fsys, dir)
}

func isTerminal(r io.Reader) bool {
	fd, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(fd.Fd()) || isatty.IsCygwinTerminal(fd.Fd())
}

// runShell runs a session and returns the status the process should exit
// with.
func runShell(fsys afero.Fs, opts runOptions) (int, error) {
	cfg, err := loadConfig(fsys, opts.ConfigDir)
	if err != nil {
		return 0, err
	}

	name := core.DefaultName
	if cfg.ShellName != "" {
		name = cfg.ShellName
	}

	var input core.LineReader
	interactive := false
	switch {
	case opts.Command != nil:
	case opts.Script != "":
		fd, err := fsys.Open(opts.Script)
		if err != nil {
			core.NewErrorReporter(opts.Stderr)(name, 0, nil, "Can't open "+opts.Script)
			return core.StatusUsage, nil
		}
		input = core.NewLineReader(fd)
	default:
		interactive = isTerminal(opts.Stdin)
	}

	events := logger.NewNopLogger()
	logFd, err := cfg.OpenEventLog()
	if err != nil {
		return 0, err
	}
	if logFd != nil {
		defer logFd.Close()
		events = logger.NewJSONLinesLogRecorder(logFd)
	}

	shell, err := core.NewShell(core.Options{
		Name:        name,
		Fs:          fsys,
		Events:      events.NewSession(),
		Stdin:       opts.Stdin,
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
		Interactive: interactive,
		ColorPrompt: interactive,
	})
	if err != nil {
		return 0, err
	}
	if err := shell.Init(cfg); err != nil {
		return 0, err
	}

	if opts.Command != nil {
		defer shell.Close()
		shell.RunLine(*opts.Command)
		return shell.Status(), nil
	}

	if interactive {
		input, err = core.NewTerminalLineReader(core.TerminalConfig{
			Stdin:  opts.Stdin,
			Stdout: opts.Stdout,
			Stderr: opts.Stderr,
			Prompt: shell.Prompt,
		})
		if err != nil {
			return 0, err
		}
	} else if input == nil {
		input = core.NewLineReader(opts.Stdin)
	}

	return shell.Run(input), nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chainsh [SCRIPT]",
	Short: "A line oriented command interpreter.",
	Long: `Reads command lines from SCRIPT, the -c flag or standard input and runs
them. Lines may chain commands with ';', '&&' and '||', '#' starts a comment.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		opts := runOptions{
			ConfigDir: cfgPath,
			Stdin:     cmd.InOrStdin(),
			Stdout:    cmd.OutOrStdout(),
			Stderr:    cmd.ErrOrStderr(),
		}
		if cmd.Flags().Changed("command") {
			opts.Command = &commandLine
		}
		if len(args) > 0 {
			opts.Script = args[0]
		}

		status, err := runShell(afero.NewOsFs(), opts)
		if err != nil {
			return err
		}
		os.Exit(status)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultDir(), "config path")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run the command line and exit")
	rootCmd.Flags().SetInterspersed(false)
}
