package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func notifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Send a test email to the selected owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}
			if !a.notifier.SendTest(cmd.Context(), owner) {
				return errors.New("test email could not be sent, check smtp settings")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "test email sent to", owner)
			return nil
		},
	})
	return cmd
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run a single reminder scan and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.requireOwner(); err != nil {
				return err
			}
			res := a.engine.Scan(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "scanned %d tasks, sent %d, failed %d\n", res.Tasks, res.Sent, res.Failed)
			return nil
		},
	}
}
