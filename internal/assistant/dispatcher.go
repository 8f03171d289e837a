package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-chatbot/internal/services"
)

const (
	ToolAddTask      = "add_task"
	ToolListTasks    = "list_tasks"
	ToolCompleteTask = "complete_task"
	ToolDeleteTask   = "delete_task"
	ToolUpdateTask   = "update_task"
)

const helpMessage = "I'm your assistant for managing todos. You can ask me to add, list, complete, delete, or update tasks."

// ToolCall records which store operation a reply was produced by.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type Reply struct {
	Response  string     `json:"response"`
	ToolCalls []ToolCall `json:"tool_calls"`
}

// Dispatcher runs exactly one task store operation per command and
// renders the outcome. Store failures end up in the reply text and are
// never returned.
type Dispatcher struct {
	logger zerolog.Logger
	tasks  services.TaskService
}

func NewDispatcher(logger zerolog.Logger, tasks services.TaskService) *Dispatcher {
	return &Dispatcher{
		logger: logger,
		tasks:  tasks,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, userID string, cmd Command) Reply {
	switch c := cmd.(type) {
	case AddCommand:
		return d.add(ctx, userID, c)
	case ListCommand:
		return d.list(ctx, userID, c)
	case CompleteCommand:
		return d.complete(ctx, userID, c)
	case DeleteCommand:
		return d.delete(ctx, userID, c)
	case UpdateCommand:
		return d.update(ctx, userID, c)
	default:
		return Reply{Response: helpMessage, ToolCalls: []ToolCall{}}
	}
}

func (d *Dispatcher) add(ctx context.Context, userID string, c AddCommand) Reply {
	call := ToolCall{
		Name:      ToolAddTask,
		Arguments: map[string]any{"user_id": userID, "title": c.Title},
	}

	task, err := d.tasks.CreateTask(ctx, services.CreateTaskParams{UserID: userID, Title: c.Title})
	if err != nil {
		return d.fail(call, err)
	}

	return d.succeed(call, fmt.Sprintf("I've added the task '%s' to your list.", preferStored(task.Title, c.Title)))
}

func (d *Dispatcher) list(ctx context.Context, userID string, c ListCommand) Reply {
	call := ToolCall{
		Name:      ToolListTasks,
		Arguments: map[string]any{"user_id": userID, "status": string(c.Status)},
	}

	tasks, err := d.tasks.ListTasks(ctx, userID, c.Status)
	if err != nil {
		return d.fail(call, err)
	}
	if len(tasks) == 0 {
		return d.succeed(call, fmt.Sprintf("You don't have any %s tasks.", c.Status))
	}

	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		lines = append(lines, fmt.Sprintf("Task #%d: '%s' (%s)", task.ID, task.Title, task.StatusText()))
	}
	return d.succeed(call, fmt.Sprintf("Here are your %s tasks:\n%s", c.Status, strings.Join(lines, "\n")))
}

func (d *Dispatcher) complete(ctx context.Context, userID string, c CompleteCommand) Reply {
	call := ToolCall{
		Name:      ToolCompleteTask,
		Arguments: map[string]any{"user_id": userID, "task_id": c.TaskID},
	}

	task, err := d.tasks.CompleteTask(ctx, services.TaskParams{UserID: userID, ID: c.TaskID})
	if err != nil {
		return d.fail(call, err)
	}
	return d.succeed(call, fmt.Sprintf("I've marked the task '%s' as completed.", task.Title))
}

func (d *Dispatcher) delete(ctx context.Context, userID string, c DeleteCommand) Reply {
	call := ToolCall{
		Name:      ToolDeleteTask,
		Arguments: map[string]any{"user_id": userID, "task_id": c.TaskID},
	}

	task, err := d.tasks.DeleteTask(ctx, services.TaskParams{UserID: userID, ID: c.TaskID})
	if err != nil {
		return d.fail(call, err)
	}
	return d.succeed(call, fmt.Sprintf("I've deleted the task '%s'.", task.Title))
}

func (d *Dispatcher) update(ctx context.Context, userID string, c UpdateCommand) Reply {
	call := ToolCall{
		Name:      ToolUpdateTask,
		Arguments: map[string]any{"user_id": userID, "task_id": c.TaskID, "title": c.Title},
	}

	title := c.Title
	task, err := d.tasks.UpdateTask(ctx, services.UpdateTaskParams{UserID: userID, ID: c.TaskID, Title: &title})
	if err != nil {
		return d.fail(call, err)
	}
	return d.succeed(call, fmt.Sprintf("I've updated the task to '%s'.", preferStored(task.Title, c.Title)))
}

func (d *Dispatcher) succeed(call ToolCall, response string) Reply {
	d.logger.Info().
		Str("tool", call.Name).
		Interface("arguments", call.Arguments).
		Msg("dispatched command")
	return Reply{Response: response, ToolCalls: []ToolCall{call}}
}

// fail keeps the tool call for a missing task, since the intent was
// understood and the store was asked; any other error drops it.
func (d *Dispatcher) fail(call ToolCall, err error) Reply {
	if errors.Is(err, services.ErrTaskNotFound) {
		d.logger.Warn().
			Str("tool", call.Name).
			Interface("arguments", call.Arguments).
			Msg("task not found")
		message := fmt.Sprintf("Task %v not found for user %v", call.Arguments["task_id"], call.Arguments["user_id"])
		return Reply{Response: apology(message), ToolCalls: []ToolCall{call}}
	}

	d.logger.Error().
		Err(err).
		Str("tool", call.Name).
		Msg("failed to dispatch command")
	return Reply{Response: apology(err.Error()), ToolCalls: []ToolCall{}}
}

func apology(message string) string {
	return "Sorry, I encountered an error: " + message
}

func preferStored(stored, requested string) string {
	if stored != "" {
		return stored
	}
	return requested
}
