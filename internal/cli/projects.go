package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ticktui/ticktui/internal/models"
)

// projectsCmd represents the projects command
var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Long: `List every project of the signed-in user.

Examples:
  ticktui projects
  ticktui projects --json | jq '.[].name'`,
	Args: cobra.NoArgs,
	RunE: runProjects,
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Show, create, update or delete a project",
}

var projectGetCmd = &cobra.Command{
	Use:   "get <project-id>",
	Short: "Show a project with its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectGet,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	Args:  cobra.NoArgs,
	RunE:  runProjectCreate,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <project-id>",
	Short: "Update the given fields of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectUpdate,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

type projectFlagValues struct {
	Name      string
	Color     string
	SortOrder int64
	ViewMode  string
	Kind      string
}

var (
	projectCreateFlags projectFlagValues
	projectUpdateFlags projectFlagValues
)

func addProjectFlags(cmd *cobra.Command, v *projectFlagValues) {
	cmd.Flags().StringVar(&v.Name, "name", "", "Project name")
	cmd.Flags().StringVar(&v.Color, "color", "", "Color, e.g. #F18181")
	cmd.Flags().Int64Var(&v.SortOrder, "sort-order", 0, "Sort order")
	cmd.Flags().StringVar(&v.ViewMode, "view-mode", "", "list, kanban or timeline")
	cmd.Flags().StringVar(&v.Kind, "kind", "", "TASK or NOTE")
}

func init() {
	addProjectFlags(projectCreateCmd, &projectCreateFlags)
	_ = projectCreateCmd.MarkFlagRequired("name")
	addProjectFlags(projectUpdateCmd, &projectUpdateFlags)

	projectCmd.AddCommand(projectGetCmd, projectCreateCmd, projectUpdateCmd, projectDeleteCmd)
	RootCmd.AddCommand(projectsCmd, projectCmd)
}

func runProjects(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}
		return outputProjects(cmd.OutOrStdout(), a.client.GetAllProjects(ctx, token))
	})
}

func runProjectGet(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}
		data := a.client.GetProjectData(ctx, token, args[0])
		if data == nil {
			return fmt.Errorf("project %s could not be loaded", args[0])
		}
		if globalFlags.JSON {
			return outputJSON(cmd.OutOrStdout(), data)
		}
		if err := outputProjects(cmd.OutOrStdout(), []models.Project{data.Project}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return outputTasks(cmd.OutOrStdout(), data.Tasks)
	})
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	v := projectCreateFlags
	payload := models.ProjectCreate{Name: v.Name}
	if cmd.Flags().Changed("color") {
		payload.Color = models.Ptr(v.Color)
	}
	if cmd.Flags().Changed("sort-order") {
		payload.SortOrder = models.Ptr(v.SortOrder)
	}
	if cmd.Flags().Changed("view-mode") {
		payload.ViewMode = models.Ptr(v.ViewMode)
	}
	if cmd.Flags().Changed("kind") {
		payload.Kind = models.Ptr(v.Kind)
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}
		project := a.client.CreateProject(ctx, token, payload)
		if project == nil {
			return fmt.Errorf("project was not created")
		}
		return outputProjects(cmd.OutOrStdout(), []models.Project{*project})
	})
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	v := projectUpdateFlags
	payload := models.ProjectUpdate{ID: args[0]}
	if cmd.Flags().Changed("name") {
		payload.Name = models.Ptr(v.Name)
	}
	if cmd.Flags().Changed("color") {
		payload.Color = models.Ptr(v.Color)
	}
	if cmd.Flags().Changed("sort-order") {
		payload.SortOrder = models.Ptr(v.SortOrder)
	}
	if cmd.Flags().Changed("view-mode") {
		payload.ViewMode = models.Ptr(v.ViewMode)
	}
	if cmd.Flags().Changed("kind") {
		payload.Kind = models.Ptr(v.Kind)
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}
		project := a.client.UpdateProject(ctx, token, payload)
		if project == nil {
			return fmt.Errorf("project %s was not updated", args[0])
		}
		return outputProjects(cmd.OutOrStdout(), []models.Project{*project})
	})
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}
		if !a.client.DeleteProject(ctx, token, args[0]) {
			return fmt.Errorf("project %s was not deleted", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s.\n", args[0])
		return nil
	})
}
