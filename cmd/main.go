package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "dlremindme",
		Short:         "DLRemindMe - deadline reminders by email",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("owner", "", "owner email to act for (overrides session.owner)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(notifyCmd())
	rootCmd.AddCommand(scanCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
