package commands

import (
	"github.com/spf13/cobra"

	"insighthub/internal/models"
)

func newGoalsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"goal", "g"},
		Short:   "Manage personal goals",
	}
	cmd.AddCommand(
		newGoalsListCmd(a),
		newGoalsAddCmd(a),
		newGoalsEditCmd(a),
		newGoalsToggleCmd(a),
		newGoalsDeleteCmd(a),
		newGoalsClearCmd(a),
	)
	return cmd
}

func newGoalsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List goals, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadGoals(cmd); err != nil {
				return err
			}
			return a.printer.Goals(a.state.Goals())
		},
	}
}

func newGoalsAddCmd(a *app) *cobra.Command {
	var priority string
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadGoals(cmd); err != nil {
				return err
			}
			r, err := a.state.CreateGoal(cmd.Context(), args[0], models.Priority(priority))
			if err != nil {
				return a.fail(err)
			}
			a.saved("goal "+r.Goal.Title, r.Durability)
			return a.printer.Goal(r)
		},
	}
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: low, medium or high (default medium)")
	return cmd
}

func newGoalsEditCmd(a *app) *cobra.Command {
	var title, priority string
	cmd := &cobra.Command{
		Use:   "edit GOAL",
		Short: "Change a goal's title or priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadGoals(cmd); err != nil {
				return err
			}
			g, err := resolveGoal(a.state, args[0])
			if err != nil {
				return a.fail(err)
			}
			var u models.GoalUpdate
			if cmd.Flags().Changed("title") {
				u.Title = &title
			}
			if cmd.Flags().Changed("priority") {
				p := models.Priority(priority)
				u.Priority = &p
			}
			r, err := a.state.UpdateGoal(cmd.Context(), g.Goal.ID, u)
			if err != nil {
				return a.fail(err)
			}
			a.saved("goal "+r.Goal.Title, r.Durability)
			return a.printer.Goal(r)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: low, medium or high")
	return cmd
}

func newGoalsToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle GOAL",
		Aliases: []string{"done"},
		Short:   "Flip a goal between open and completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadGoals(cmd); err != nil {
				return err
			}
			g, err := resolveGoal(a.state, args[0])
			if err != nil {
				return a.fail(err)
			}
			r, err := a.state.ToggleGoal(cmd.Context(), g.Goal.ID)
			if err != nil {
				return a.fail(err)
			}
			a.saved("goal "+r.Goal.Title, r.Durability)
			return a.printer.Goal(r)
		},
	}
}

func newGoalsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete GOAL",
		Aliases: []string{"rm"},
		Short:   "Delete a goal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadGoals(cmd); err != nil {
				return err
			}
			g, err := resolveGoal(a.state, args[0])
			if err != nil {
				return a.fail(err)
			}
			removed, err := a.state.DeleteGoal(cmd.Context(), g.Goal.ID)
			if err != nil {
				return a.fail(err)
			}
			a.printer.Success("deleted goal %s", removed.Goal.Title)
			return nil
		},
	}
}

func newGoalsClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every completed goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadGoals(cmd); err != nil {
				return err
			}
			n, err := a.state.DeleteCompletedGoals(cmd.Context())
			if err != nil {
				return a.fail(err)
			}
			a.printer.Success("deleted %s", plural(int(n), "completed goal"))
			return nil
		},
	}
}
