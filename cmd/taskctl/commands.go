package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskdesk/pkg/report"
	"taskdesk/pkg/task"
)

const dateLayout = "2006-01-02"

func (a *app) listCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fetch(cmd.Context()); err != nil {
				return err
			}
			a.store.SetFilter(task.Filter(filter))
			tasks := a.store.FilteredTasks()
			return a.print(cmd.OutOrStdout(), tasks, func(w io.Writer) { printShortTasks(w, tasks) })
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(task.FilterAll), "all, active or completed")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), t, func(w io.Writer) { printShortTask(w, t) })
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	var (
		d   task.Draft
		pri string
		due string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Long: `Create a task. Only --title is required.

Examples:
  taskctl add --title "Write report"
  taskctl add -t "Ship release" -p high --due 2026-11-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Priority = task.Priority(pri)
			if due != "" {
				t, err := parseDate(due)
				if err != nil {
					return err
				}
				d.DueDate = &t
			}
			t, err := a.store.AddTask(cmd.Context(), d)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), t, func(w io.Writer) { printShortTask(w, t) })
		},
	}
	cmd.Flags().StringVarP(&d.Title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&d.Description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&pri, "priority", "p", "", "low, medium or high (default medium)")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&d.Completed, "completed", false, "create the task already completed")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	var (
		title, desc, pri, due string
		completed             bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Long: `Change fields of a task. Only the flags given are sent.
Pass --due "" to clear the due date.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p task.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("description") {
				p.Description = &desc
			}
			if flags.Changed("priority") {
				pr := task.Priority(pri)
				p.Priority = &pr
			}
			if flags.Changed("completed") {
				p.Completed = &completed
			}
			if flags.Changed("due") {
				p.DueDate.Set = true
				if due != "" {
					t, err := parseDate(due)
					if err != nil {
						return err
					}
					p.DueDate.Time = &t
				}
			}
			if p.Empty() {
				return fmt.Errorf("nothing to update")
			}
			t, err := a.store.UpdateTask(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), t, func(w io.Writer) { printShortTask(w, t) })
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&desc, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&pri, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&completed, "completed", false, "completion state")
	return cmd
}

func (a *app) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.store.ToggleTaskCompletion(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), t, func(w io.Writer) { printShortTask(w, t) })
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Are you sure you want to delete this task?") {
				fmt.Fprintln(cmd.ErrOrStderr(), "cancelled")
				return nil
			}
			if err := a.store.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) countsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show total, active and completed counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fetch(cmd.Context()); err != nil {
				return err
			}
			c := a.store.TaskCounts()
			return a.print(cmd.OutOrStdout(), c, func(w io.Writer) {
				fmt.Fprintf(w, "Total:     %d\nActive:    %d\nCompleted: %d\n", c.Total, c.Active, c.Completed)
			})
		},
	}
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.client.Health(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), h, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %s (%s)\n", h.Status, h.Message, a.client.BaseURL())
			})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var (
		out    string
		filter string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a PDF report of tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fetch(cmd.Context()); err != nil {
				return err
			}
			a.store.SetFilter(task.Filter(filter))

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.WritePDF(f, a.store.FilteredTasks(), a.store.TaskCounts(), time.Now()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "tasks.pdf", "output file")
	cmd.Flags().StringVarP(&filter, "filter", "f", string(task.FilterAll), "all, active or completed")
	return cmd
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("due date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
