package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ticktui/ticktui/internal/models"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Print every project with its tasks",
	Args:  cobra.NoArgs,
	RunE:  runOverview,
}

func init() {
	RootCmd.AddCommand(overviewCmd)
}

// ProjectOverview is one project with its tasks. Tasks is nil when the
// project data could not be loaded.
type ProjectOverview struct {
	Project models.Project `json:"project"`
	Tasks   []models.Task  `json:"tasks"`
	Loaded  bool           `json:"loaded"`
}

func runOverview(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}

		var overview []ProjectOverview
		for _, p := range a.client.GetAllProjects(ctx, token) {
			entry := ProjectOverview{Project: p}
			if data := a.client.GetProjectData(ctx, token, p.ID); data != nil {
				entry.Tasks = data.Tasks
				entry.Loaded = true
			}
			overview = append(overview, entry)
		}

		if globalFlags.JSON {
			return outputJSON(cmd.OutOrStdout(), overview)
		}
		printOverview(cmd, overview)
		return nil
	})
}

func printOverview(cmd *cobra.Command, overview []ProjectOverview) {
	w := cmd.OutOrStdout()
	if len(overview) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return
	}

	for _, entry := range overview {
		fmt.Fprintf(w, "[Project] %s (ID: %s)\n", entry.Project.Name, entry.Project.ID)
		switch {
		case !entry.Loaded:
			fmt.Fprintln(w, "  Failed to load project data.")
		case len(entry.Tasks) == 0:
			fmt.Fprintln(w, "  No tasks.")
		default:
			fmt.Fprintln(w, "  Tasks:")
			for _, t := range entry.Tasks {
				fmt.Fprintf(w, "    - %s (ID: %s) - Status: %s, Memo: %s\n", t.Title, t.ID, t.StatusLabel(), deref(t.Content))
			}
		}
		fmt.Fprintln(w, strings.Repeat("-", 40))
	}
}
