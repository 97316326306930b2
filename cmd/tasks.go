package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dlremindme/internal/task"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage the selected owner's tasks",
	}
	cmd.AddCommand(tasksAddCmd())
	cmd.AddCommand(tasksListCmd())
	cmd.AddCommand(tasksDeleteCmd())
	return cmd
}

func tasksAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task; deadline is RFC 3339, YYYY-MM-DD or DD-MM-YYYY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			input, _ := cmd.Flags().GetString("deadline")
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}
			deadline, err := task.ParseInput(input, a.zone)
			if err != nil {
				return err
			}
			t, err := a.store.Add(owner, name, deadline)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", t.ID, t.Deadline.Format(task.DisplayDateTime))
			return nil
		},
	}
	cmd.Flags().String("name", "", "task name")
	cmd.Flags().String("deadline", "", "task deadline")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("deadline")
	return cmd
}

func tasksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks with their countdown",
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
			now := a.clock.Now()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDEADLINE\tREMAINING")
			for _, t := range a.store.TasksFor(owner) {
				if !t.HasDeadline() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t-\n", t.ID, t.Name, t.Record().Deadline)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Name,
					t.Deadline.In(a.zone).Format(task.DisplayDate), task.Countdown(t.Deadline, now))
			}
			return tw.Flush()
		},
	}
}

func tasksDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a task by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			owner, err := a.requireOwner()
			if err != nil {
				return err
			}
			removed, err := a.store.Delete(owner, id)
			if err != nil {
				return err
			}
			if !removed {
				return errors.New("task not found")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", id)
			return nil
		},
	}
	cmd.Flags().String("id", "", "task id")
	cmd.MarkFlagRequired("id")
	return cmd
}

