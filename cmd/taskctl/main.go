package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"taskdesk/internal/config"
	"taskdesk/pkg/client"
	"taskdesk/pkg/task"
	"taskdesk/pkg/taskstore"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "taskctl:", err)
		os.Exit(1)
	}
}

// app is shared by all subcommands once the root pre-run has built it.
type app struct {
	apiURL  string
	jsonOut bool

	logger *slog.Logger
	client *client.Client
	store  *taskstore.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage tasks on a task server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "API base URL (default from config api_base_url)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "output as JSON")

	root.AddCommand(
		a.listCmd(),
		a.getCmd(),
		a.addCmd(),
		a.updateCmd(),
		a.toggleCmd(),
		a.deleteCmd(),
		a.countsCmd(),
		a.healthCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.logger = cfg.Logger()
	if a.apiURL == "" {
		a.apiURL = cfg.APIBaseURL
	}
	a.client, err = client.New(a.apiURL, client.WithLogger(a.logger))
	if err != nil {
		return err
	}
	a.store = taskstore.New(a.client, taskstore.WithLogger(a.logger))
	return nil
}

// fetch loads the task list into the store, surfacing the store's error.
func (a *app) fetch(ctx context.Context) error {
	a.store.FetchTasks(ctx)
	if msg := a.store.State().Error; msg != "" {
		return fmt.Errorf("fetch tasks: %s", msg)
	}
	return nil
}

func (a *app) print(w io.Writer, v any, short func(io.Writer)) error {
	if a.jsonOut || short == nil {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	short(w)
	return nil
}

func printShortTasks(w io.Writer, tasks []task.Task) {
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		due := ""
		if t.DueDate != nil {
			due = "due " + t.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "[%s] %-36s  %-6s  %-14s  %s\n", mark, t.ID, t.Priority, due, truncStr(t.Title, 60))
	}
}

func printShortTask(w io.Writer, t *task.Task) {
	printShortTasks(w, []task.Task{*t})
	if t.Description != "" {
		fmt.Fprintf(w, "    %s\n", t.Description)
	}
}

func truncStr(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
