package commands

import (
	"github.com/spf13/cobra"

	"insighthub/internal/models"
)

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "List and manage projects",
	}
	cmd.AddCommand(
		newProjectsListCmd(a),
		newProjectsGetCmd(a),
		newProjectsCreateCmd(a),
		newProjectsUpdateCmd(a),
		newProjectsDeleteCmd(a),
	)
	return cmd
}

func newProjectsListCmd(a *app) *cobra.Command {
	var status string
	var recent int
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadProjects(cmd); err != nil {
				return err
			}
			records := a.state.Projects()
			switch {
			case status != "":
				records = a.state.ProjectsByStatus(models.ClientProjectStatus(status))
			case recent > 0:
				records = a.state.RecentProjects(recent)
			}
			return a.printer.Projects(records)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only projects with this status (created-now, in-progress, completed)")
	cmd.Flags().IntVar(&recent, "recent", 0, "Only the N most recently created projects")
	return cmd
}

func newProjectsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT",
		Short: "Show a project and its tasks",
		Args:  cobra.ExactArgs(1),
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

type projectFlags struct {
	name        string
	description string
	status      string
	priority    string
	due         string
	completion  int
	tags        []string
	people      []string
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Project name")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().StringVar(&f.status, "status", string(models.ClientProjectCreated), "Status: created-now, in-progress or completed")
	cmd.Flags().StringVar(&f.priority, "priority", string(models.PriorityMedium), "Priority: low, medium or high")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD); empty clears it on update")
	cmd.Flags().IntVar(&f.completion, "completion", 0, "Completion percentage")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringSliceVar(&f.people, "user", nil, "Assigned user name (repeatable)")
}

// apply copies the flags the user set onto cp.
func (f *projectFlags) apply(cmd *cobra.Command, cp *models.ClientProject) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		cp.Name = f.name
	}
	if flags.Changed("description") {
		cp.Description = f.description
	}
	if flags.Changed("status") {
		cp.Status = models.ClientProjectStatus(f.status)
	}
	if flags.Changed("priority") {
		cp.Priority = models.Priority(f.priority)
	}
	if flags.Changed("due") {
		due, err := parseDue(f.due)
		if err != nil {
			return err
		}
		cp.DueDate = due
	}
	if flags.Changed("completion") {
		cp.Completion = f.completion
	}
	if flags.Changed("tag") {
		cp.Tags = f.tags
	}
	if flags.Changed("user") {
		cp.AssignedUsers = users(f.people)
	}
	return nil
}

func newProjectsCreateCmd(a *app) *cobra.Command {
	var f projectFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadProjects(cmd); err != nil {
				return err
			}
			cp := models.ClientProject{
				Status:   models.ClientProjectStatus(f.status),
				Priority: models.Priority(f.priority),
			}
			if err := f.apply(cmd, &cp); err != nil {
				return a.fail(err)
			}
			r, err := a.state.CreateProject(cmd.Context(), cp)
			if err != nil {
				return a.fail(err)
			}
			a.saved("project "+r.Project.Name, r.Durability)
			return a.printer.Project(r)
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectsUpdateCmd(a *app) *cobra.Command {
	var f projectFlags
	cmd := &cobra.Command{
		Use:   "update PROJECT",
		Short: "Change project fields; flags not given stay as they are",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProjects(cmd); err != nil {
				return err
			}
			current, err := resolveProject(a.state, args[0])
			if err != nil {
				return a.fail(err)
			}
			cp := current.Project.Clone()
			// Tasks are edited through the tasks commands.
			cp.Tasks = nil
			if err := f.apply(cmd, &cp); err != nil {
				return a.fail(err)
			}
			r, err := a.state.UpdateProject(cmd.Context(), current.Project.ID, cp)
			if err != nil {
				return a.fail(err)
			}
			a.saved("project "+r.Project.Name, r.Durability)
			return a.printer.Project(r)
		},
	}
	f.register(cmd)
	return cmd
}

func newProjectsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete PROJECT",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProjects(cmd); err != nil {
				return err
			}
			r, err := resolveProject(a.state, args[0])
			if err != nil {
				return a.fail(err)
			}
			if err := a.state.DeleteProject(cmd.Context(), r.Project.ID); err != nil {
				return a.fail(err)
			}
			a.printer.Success("deleted project %s", r.Project.Name)
			return nil
		},
	}
}
