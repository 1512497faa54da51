package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ticktui/ticktui/internal/models"
)

func outputJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func formatTime(t *models.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func outputProjects(w io.Writer, projects []models.Project) error {
	if globalFlags.JSON {
		return outputJSON(w, projects)
	}
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tVIEW\tCLOSED")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", p.ID, p.Name, orDash(deref(p.Color)), orDash(deref(p.ViewMode)), p.IsClosed())
	}
	return tw.Flush()
}

func outputTasks(w io.Writer, tasks []models.Task) error {
	if globalFlags.JSON {
		return outputJSON(w, tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPROJECT\tTITLE\tSTATUS\tDUE\tPRIORITY")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", t.ID, t.ProjectID, t.Title, t.StatusLabel(), formatTime(t.DueDate), deref(t.Priority))
	}
	return tw.Flush()
}

func outputTask(w io.Writer, t *models.Task) error {
	if globalFlags.JSON {
		return outputJSON(w, t)
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Project:\t%s\n", t.ProjectID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	fmt.Fprintf(tw, "Status:\t%s\n", t.StatusLabel())
	fmt.Fprintf(tw, "Start:\t%s\n", formatTime(t.StartDate))
	fmt.Fprintf(tw, "Due:\t%s\n", formatTime(t.DueDate))
	fmt.Fprintf(tw, "Priority:\t%d\n", deref(t.Priority))
	if len(t.Tags) > 0 {
		fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(t.Tags, ", "))
	}
	if content := deref(t.Content); content != "" {
		fmt.Fprintf(tw, "Memo:\t%s\n", content)
	}
	for _, item := range t.Items {
		mark := " "
		if deref(item.Status) != 0 {
			mark = "x"
		}
		fmt.Fprintf(tw, "\t[%s] %s\n", mark, item.Title)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
