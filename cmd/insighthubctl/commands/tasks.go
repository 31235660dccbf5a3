package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"insighthub/internal/models"
	"insighthub/internal/printer"
)

func newTasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "Manage the tasks of a project",
	}
	cmd.AddCommand(
		newTasksListCmd(a),
		newTasksAddCmd(a),
		newTasksMoveCmd(a),
		newTasksEditCmd(a),
		newTasksDeleteCmd(a),
		newTasksProgressCmd(a),
	)
	return cmd
}

func newTasksListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list PROJECT",
		Aliases: []string{"ls"},
		Short:   "Show the tasks of a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProjects(cmd); err != nil {
				return err
			}
			r, err := resolveProject(a.state, args[0])
			if err != nil {
				return a.fail(err)
			}
			return a.printer.Project(r)
		},
	}
}

func newTasksAddCmd(a *app) *cobra.Command {
	var in models.TaskInput
	var status, priority string
	cmd := &cobra.Command{
		Use:   "add PROJECT TITLE",
		Short: "Add a task to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProjects(cmd); err != nil {
				return err
			}
			p, err := resolveProject(a.state, args[0])
			if err != nil {
				return a.fail(err)
			}
			in.Title = args[1]
			in.Status = models.ClientTaskStatus(status)
			in.Priority = models.Priority(priority)
			r, err := a.state.CreateTask(cmd.Context(), p.Project.ID, in)
			if err != nil {
				return a.fail(err)
			}
			a.saved("task "+in.Title, r.Durability)
			return a.printer.Project(r)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Status: todo, in-progress or done (default todo)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: low, medium or high (default medium)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().StringVar(&in.Assignee, "assignee", "", "Assignee name")
	return cmd
}

func newTasksMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move PROJECT TASK STATUS",
		Short: "Move a task to todo, in-progress or done",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := models.ClientTaskStatus(args[2])
			return a.updateTask(cmd, args[0], args[1], models.TaskUpdates{Status: &status})
		},
	}
}

func newTasksEditCmd(a *app) *cobra.Command {
	var title, description, priority, assignee, status string
	cmd := &cobra.Command{
		Use:   "edit PROJECT TASK",
		Short: "Change task fields; flags not given stay as they are",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u models.TaskUpdates
			flags := cmd.Flags()
			if flags.Changed("title") {
				u.Title = &title
			}
			if flags.Changed("description") {
				u.Description = &description
			}
			if flags.Changed("priority") {
				p := models.Priority(priority)
				u.Priority = &p
			}
			if flags.Changed("assignee") {
				u.Assignee = &assignee
			}
			if flags.Changed("status") {
				s := models.ClientTaskStatus(status)
				u.Status = &s
			}
			return a.updateTask(cmd, args[0], args[1], u)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: low, medium or high")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee name")
	cmd.Flags().StringVar(&status, "status", "", "Status: todo, in-progress or done")
	return cmd
}

func (a *app) updateTask(cmd *cobra.Command, projectRef, taskRef string, u models.TaskUpdates) error {
	if err := a.loadProjects(cmd); err != nil {
		return err
	}
	p, err := resolveProject(a.state, projectRef)
	if err != nil {
		return a.fail(err)
	}
	t, err := resolveTask(p, taskRef)
	if err != nil {
		return a.fail(err)
	}
	r, err := a.state.UpdateTask(cmd.Context(), p.Project.ID, t.ID, u)
	if err != nil {
		return a.fail(err)
	}
	a.saved("task "+t.Title, r.Durability)
	return a.printer.Project(r)
}

func newTasksDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete PROJECT TASK",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProjects(cmd); err != nil {
				return err
			}
			p, err := resolveProject(a.state, args[0])
			if err != nil {
				return a.fail(err)
			}
			t, err := resolveTask(p, args[1])
			if err != nil {
				return a.fail(err)
			}
			r, err := a.state.DeleteTask(cmd.Context(), p.Project.ID, t.ID)
			if err != nil {
				return a.fail(err)
			}
			a.saved("deletion of task "+t.Title, r.Durability)
			return a.printer.Project(r)
		},
	}
}

func newTasksProgressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress PROJECT",
		Short: "Show how many tasks of a project are done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProjects(cmd); err != nil {
				return err
			}
			p, err := resolveProject(a.state, args[0])
			if err != nil {
				return a.fail(err)
			}
			progress, err := a.state.TaskProgress(p.Project.ID)
			if err != nil {
				return a.fail(err)
			}
			if a.printer.Format != printer.FormatTable {
				return a.printer.Encode(progress)
			}
			fmt.Fprintf(a.out, "%s: %d of %s done (%d%%)\n", p.Project.Name, progress.Done, plural(progress.Total, "task"), progress.Percent)
			return nil
		},
	}
}
