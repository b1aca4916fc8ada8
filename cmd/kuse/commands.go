package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kuse/internal/heatmap"
	"kuse/internal/storage"
	"kuse/internal/tracker"
	"kuse/internal/ui"
)

func newHeatmapCmd(a *app) *cobra.Command {
	var habitID string
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Print the activity heatmap for the last 53 weeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.svc.Snapshot()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			todos := snap.Todos
			title := "All activity"
			if habitID != "" {
				h, err := a.svc.Habit(habitID)
				if err != nil {
					return err
				}
				todos = nil
				title = h.Name
			}

			g := heatmap.Build(a.svc.Now(), snap.CheckIns, todos, habitID)
			fmt.Fprintf(out, "%s · %s\n\n", title, heatmap.RegionLabel)
			fmt.Fprintln(out, ui.RenderHeatmap(g, heatmap.PaletteFor(a.cfg.Theme), heatmap.Focus{}))
			if today, ok := g.Cell(g.TodayIndex); ok {
				fmt.Fprintf(out, "\nToday: %s\n", heatmap.Describe(today))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&habitID, "habit", "", "only count check-ins for this habit ID")
	return cmd
}

func newHabitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage habits",
	}

	add := &cobra.Command{
		Use:   "add NAME...",
		Short: "Add a habit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.svc.AddHabit(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added habit: %s (%s)\n", h.Name, h.ID)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List habits and whether they are checked in today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.svc.Snapshot()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(snap.Habits) == 0 {
				fmt.Fprintln(out, "No habits yet.")
				return nil
			}
			for _, h := range snap.Habits {
				fmt.Fprintf(out, "%s %s  %s\n", mark(a.svc.CheckedToday(snap.CheckIns, h.ID)), h.ID, h.Name)
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm HABIT_ID",
		Aliases: []string{"delete"},
		Short:   "Delete a habit and all of its check-ins",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.svc.Habit(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteHabit(h.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted habit: %s\n", h.Name)
			return nil
		},
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}

func newCheckInCmd(a *app) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "checkin HABIT_ID",
		Short: "Check a habit in for today, optionally with a message",
		Long: `Check a habit in for today. Running it again on the same day replaces
the message instead of adding a second check-in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.svc.Habit(args[0])
			if err != nil {
				return err
			}
			c, err := a.svc.CheckIn(h.ID, message)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Checked in: %s\n", h.Name)
			if c.Message != "" {
				fmt.Fprintf(out, "  %s\n", c.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "note stored with the check-in")
	return cmd
}

func newTodoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage today's todos",
	}

	add := &cobra.Command{
		Use:   "add NAME...",
		Short: "Add a todo for today",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.svc.AddTodo(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added todo: %s (%s)\n", t.Name, t.ID)
			return nil
		},
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List today's todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.svc.Snapshot()
			if err != nil {
				return err
			}
			todos := snap.Todos
			if !all {
				todos = a.svc.TodaysTodos(todos)
			}
			out := cmd.OutOrStdout()
			if len(todos) == 0 {
				fmt.Fprintln(out, "No todos for today.")
				return nil
			}
			for _, t := range todos {
				if all {
					fmt.Fprintf(out, "%s %s  %s  %s\n", mark(t.Completed), t.ID, t.Date, t.Name)
					continue
				}
				fmt.Fprintf(out, "%s %s  %s\n", mark(t.Completed), t.ID, t.Name)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include todos from every day")

	toggle := &cobra.Command{
		Use:   "toggle TODO_ID",
		Short: "Flip a todo between done and not done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.svc.ToggleTodo(args[0])
			if err != nil {
				return err
			}
			if t.Completed {
				fmt.Fprintf(cmd.OutOrStdout(), "Completed: %s\n", t.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Marked as not completed: %s\n", t.Name)
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm TODO_ID",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := findTodo(a.svc, args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteTodo(t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted todo: %s\n", t.Name)
			return nil
		},
	}

	cmd.AddCommand(add, list, toggle, rm)
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write every habit, check-in and todo to a JSON or YAML file (- for JSON on stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := storage.FormatForPath(args[0])
			if args[0] == "-" {
				return a.store.Export(cmd.OutOrStdout(), format)
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			if err := a.store.Export(f, format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.log.Info("exported", zap.String("path", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all data with the contents of a JSON or YAML export (- for JSON on stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}
			if err := a.store.Import(r, storage.FormatForPath(args[0])); err != nil {
				return err
			}
			a.log.Info("imported", zap.String("path", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", args[0])
			return nil
		},
	}
}

func findTodo(svc *tracker.Service, id string) (tracker.Todo, error) {
	snap, err := svc.Snapshot()
	if err != nil {
		return tracker.Todo{}, err
	}
	for _, t := range snap.Todos {
		if t.ID == id {
			return t, nil
		}
	}
	return tracker.Todo{}, fmt.Errorf("%w: %s", tracker.ErrTodoNotFound, id)
}

func mark(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
