package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ticktui/ticktui/internal/models"
)

// tasksCmd represents the tasks command
var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List tasks",
	Long: `List tasks of one project, or of the inbox and every project.

Examples:
  # Everything, including subtasks missing from project snapshots
  ticktui tasks

  # One project, only completed tasks
  ticktui tasks --project 6226ff9877acee87727f6bca --completed`,
	Args: cobra.NoArgs,
	RunE: runTasks,
}

var tasksFlags struct {
	Project   string
	Completed bool
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Show, create, update, complete or delete a task",
}

var taskGetCmd = &cobra.Command{
	Use:   "get <project-id> <task-id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskGet,
}

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task",
	Long: `Create a task. Only the flags you pass are sent.

Example:
  ticktui task create --project inbox --title "Buy milk" --due 2026-05-01T18:00:00+02:00 --priority 3`,
	Args: cobra.NoArgs,
	RunE: runTaskCreate,
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <project-id> <task-id>",
	Short: "Update the given fields of a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskUpdate,
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <project-id> <task-id>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskComplete,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <project-id> <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskDelete,
}

type taskFlagValues struct {
	Project  string
	Title    string
	Content  string
	Desc     string
	Start    string
	Due      string
	TimeZone string
	Repeat   string
	AllDay   bool
	Priority int
}

var (
	taskCreateFlags taskFlagValues
	taskUpdateFlags taskFlagValues
)

func addTaskFieldFlags(cmd *cobra.Command, v *taskFlagValues) {
	cmd.Flags().StringVar(&v.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&v.Content, "content", "", "Memo")
	cmd.Flags().StringVar(&v.Desc, "desc", "", "Checklist description")
	cmd.Flags().StringVar(&v.Start, "start", "", "Start date (RFC 3339 or 2006-01-02T15:04:05.000-0700)")
	cmd.Flags().StringVar(&v.Due, "due", "", "Due date (RFC 3339 or 2006-01-02T15:04:05.000-0700)")
	cmd.Flags().StringVar(&v.TimeZone, "time-zone", "", "IANA time zone, e.g. Europe/Berlin")
	cmd.Flags().StringVar(&v.Repeat, "repeat", "", "Recurrence rule, e.g. RRULE:FREQ=DAILY;INTERVAL=1")
	cmd.Flags().BoolVar(&v.AllDay, "all-day", false, "All-day task")
	cmd.Flags().IntVar(&v.Priority, "priority", 0, "0 none, 1 low, 3 medium, 5 high")
}

func init() {
	tasksCmd.Flags().StringVar(&tasksFlags.Project, "project", "", "Only list tasks of this project")
	tasksCmd.Flags().BoolVar(&tasksFlags.Completed, "completed", false, "Only list completed tasks")

	addTaskFieldFlags(taskCreateCmd, &taskCreateFlags)
	taskCreateCmd.Flags().StringVar(&taskCreateFlags.Project, "project", "", "Project id (use inbox for the inbox)")
	_ = taskCreateCmd.MarkFlagRequired("project")
	_ = taskCreateCmd.MarkFlagRequired("title")

	addTaskFieldFlags(taskUpdateCmd, &taskUpdateFlags)

	taskCmd.AddCommand(taskGetCmd, taskCreateCmd, taskUpdateCmd, taskCompleteCmd, taskDeleteCmd)
	RootCmd.AddCommand(tasksCmd, taskCmd)
}

// taskFields holds the optional task fields whose flags were passed.
type taskFields struct {
	Content    *string
	Desc       *string
	StartDate  *models.Time
	DueDate    *models.Time
	TimeZone   *string
	RepeatFlag *string
	IsAllDay   *bool
	Priority   *int
}

func (v *taskFlagValues) fields(cmd *cobra.Command) (taskFields, error) {
	var f taskFields
	changed := cmd.Flags().Changed

	if changed("content") {
		f.Content = models.Ptr(v.Content)
	}
	if changed("desc") {
		f.Desc = models.Ptr(v.Desc)
	}
	if changed("start") {
		t, err := models.ParseTime(v.Start)
		if err != nil {
			return f, fmt.Errorf("invalid --start: %w", err)
		}
		f.StartDate = &t
	}
	if changed("due") {
		t, err := models.ParseTime(v.Due)
		if err != nil {
			return f, fmt.Errorf("invalid --due: %w", err)
		}
		f.DueDate = &t
	}
	if changed("time-zone") {
		f.TimeZone = models.Ptr(v.TimeZone)
	}
	if changed("repeat") {
		f.RepeatFlag = models.Ptr(v.Repeat)
	}
	if changed("all-day") {
		f.IsAllDay = models.Ptr(v.AllDay)
	}
	if changed("priority") {
		f.Priority = models.Ptr(v.Priority)
	}
	return f, nil
}

func runTasks(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}

		var tasks []models.Task
		if tasksFlags.Project != "" {
			data := a.client.GetProjectData(ctx, token, tasksFlags.Project)
			if data == nil {
				return fmt.Errorf("project %s could not be loaded", tasksFlags.Project)
			}
			tasks = data.Tasks
		} else {
			tasks = a.client.GetAllTasks(ctx, token)
		}

		if tasksFlags.Completed {
			tasks = models.ProjectData{Tasks: tasks}.CompletedTasks()
		}
		return outputTasks(cmd.OutOrStdout(), tasks)
	})
}

func runTaskGet(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}
		task := a.client.GetTask(ctx, token, args[0], args[1])
		if task == nil {
			return fmt.Errorf("task %s not found in project %s", args[1], args[0])
		}
		return outputTask(cmd.OutOrStdout(), task)
	})
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	v := taskCreateFlags
	f, err := v.fields(cmd)
	if err != nil {
		return err
	}
	payload := models.TaskCreate{
		Title:      v.Title,
		ProjectID:  v.Project,
		Content:    f.Content,
		Desc:       f.Desc,
		IsAllDay:   f.IsAllDay,
		StartDate:  f.StartDate,
		DueDate:    f.DueDate,
		TimeZone:   f.TimeZone,
		RepeatFlag: f.RepeatFlag,
		Priority:   f.Priority,
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}
		task := a.client.CreateTask(ctx, token, payload)
		if task == nil {
			return fmt.Errorf("task was not created")
		}
		return outputTask(cmd.OutOrStdout(), task)
	})
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	v := taskUpdateFlags
	f, err := v.fields(cmd)
	if err != nil {
		return err
	}
	payload := models.TaskUpdate{
		ID:         args[1],
		ProjectID:  args[0],
		Content:    f.Content,
		Desc:       f.Desc,
		IsAllDay:   f.IsAllDay,
		StartDate:  f.StartDate,
		DueDate:    f.DueDate,
		TimeZone:   f.TimeZone,
		RepeatFlag: f.RepeatFlag,
		Priority:   f.Priority,
	}
	if cmd.Flags().Changed("title") {
		payload.Title = models.Ptr(v.Title)
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}
		task := a.client.UpdateTask(ctx, token, payload)
		if task == nil {
			return fmt.Errorf("task %s was not updated", args[1])
		}
		return outputTask(cmd.OutOrStdout(), task)
	})
}

func runTaskComplete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}
		if !a.client.CompleteTask(ctx, token, args[0], args[1]) {
			return fmt.Errorf("task %s was not completed", args[1])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Completed task %s.\n", args[1])
		return nil
	})
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.token(ctx)
		if err != nil {
			return err
		}
		if !a.client.DeleteTask(ctx, token, args[0], args[1]) {
			return fmt.Errorf("task %s was not deleted", args[1])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s.\n", args[1])
		return nil
	})
}
