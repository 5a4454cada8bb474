package cmd

import (
	"fmt"
	"io"

	"github.com/josephlewis42/chainsh/core/config"
	"github.com/josephlewis42/chainsh/core/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the shell event log.",
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of events.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(afero.NewOsFs(), cfgPath)
		if err != nil {
			return err
		}

		return writeReport(cfg, cmd.OutOrStdout())
	},
}

func writeReport(cfg *config.Configuration, w io.Writer) error {
	fd, err := cfg.ReadEventLog()
	if err != nil {
		return err
	}
	defer fd.Close()

	var report logger.Report
	if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
		return err
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, string(out))

	return nil
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
}
