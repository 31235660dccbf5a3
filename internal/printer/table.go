package printer

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"insighthub/internal/models"
	"insighthub/internal/reconcile"
)

func (p *Printer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
}

func durability(d models.Durability) string {
	if d == models.LocalOnly {
		return yellow.Sprint("local")
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 14 {
		return id[:14]
	}
	return id
}

func dueDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// Projects renders project records.
func (p *Printer) Projects(records []models.ProjectRecord) error {
	if p.Format != FormatTable {
		return p.Encode(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(p.Out, "No projects found")
		return nil
	}
	w := p.table()
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tPRIORITY\tDONE\tTASKS\tDUE\t")
	for _, r := range records {
		cp := r.Project
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%d\t%s\t%s\n",
			shortID(cp.ID), cp.Name, cp.Status, cp.Priority, cp.Completion, len(cp.Tasks), dueDate(cp.DueDate), durability(r.Durability))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	noun := "project"
	if len(records) != 1 {
		noun = "projects"
	}
	faint.Fprintf(p.Out, "\n%d %s\n", len(records), noun)
	return nil
}

// Project renders one project with its tasks.
func (p *Printer) Project(r models.ProjectRecord) error {
	if p.Format != FormatTable {
		return p.Encode(r)
	}
	cp := r.Project
	fmt.Fprintf(p.Out, "%s  %s\n", cp.Name, durability(r.Durability))
	fmt.Fprintf(p.Out, "  id:       %s\n", cp.ID)
	fmt.Fprintf(p.Out, "  status:   %s\n", cp.Status)
	fmt.Fprintf(p.Out, "  priority: %s\n", cp.Priority)
	fmt.Fprintf(p.Out, "  done:     %d%%\n", cp.Completion)
	fmt.Fprintf(p.Out, "  due:      %s\n", dueDate(cp.DueDate))
	if len(cp.AssignedUsers) > 0 {
		names := make([]string, len(cp.AssignedUsers))
		for i, u := range cp.AssignedUsers {
			names[i] = u.Name
		}
		fmt.Fprintf(p.Out, "  people:   %s\n", strings.Join(names, ", "))
	}
	if len(cp.Tags) > 0 {
		fmt.Fprintf(p.Out, "  tags:     %s\n", strings.Join(cp.Tags, ", "))
	}
	if cp.Description != "" {
		fmt.Fprintf(p.Out, "\n  %s\n", cp.Description)
	}
	fmt.Fprintln(p.Out)
	return p.tasks(cp.Tasks)
}

func (p *Printer) tasks(tasks []models.ClientTask) error {
	if len(tasks) == 0 {
		fmt.Fprintln(p.Out, "No tasks")
		return nil
	}
	w := p.table()
	fmt.Fprintln(w, "TASK\tTITLE\tSTATUS\tPRIORITY\tASSIGNEE\t")
	for _, t := range tasks {
		assignee := t.Assignee
		if assignee == "" {
			assignee = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", shortID(t.ID), t.Title, t.Status, t.Priority, assignee)
	}
	return w.Flush()
}

// Goals renders goal records.
func (p *Printer) Goals(records []models.GoalRecord) error {
	if p.Format != FormatTable {
		return p.Encode(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(p.Out, "No goals found")
		return nil
	}
	w := p.table()
	fmt.Fprintln(w, "ID\tDONE\tTITLE\tPRIORITY\t")
	for _, r := range records {
		mark := "[ ]"
		if r.Goal.Completed {
			mark = "[x]"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(r.Goal.ID), mark, r.Goal.Title, r.Goal.Priority, durability(r.Durability))
	}
	return w.Flush()
}

// Goal renders a single goal record.
func (p *Printer) Goal(r models.GoalRecord) error {
	return p.Goals([]models.GoalRecord{r})
}

// Stats renders the dashboard summary.
func (p *Printer) Stats(s reconcile.Stats) error {
	if p.Format != FormatTable {
		return p.Encode(s)
	}
	w := p.table()
	fmt.Fprintf(w, "Total\t%d\n", s.Total)
	fmt.Fprintf(w, "Completed\t%d\n", s.Completed)
	fmt.Fprintf(w, "In progress\t%d\n", s.InProgress)
	fmt.Fprintf(w, "Created\t%d\n", s.Created)
	fmt.Fprintf(w, "Completion rate\t%d%%\n", s.CompletionRate)
	return w.Flush()
}
