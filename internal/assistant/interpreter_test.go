package assistant

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/adanyl0v/todo-chatbot/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func userSays(message string) []Turn {
	return []Turn{{Role: models.RoleUser, Content: message}}
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Command
	}{
		{"add with article", "Add a task to buy groceries", AddCommand{Title: "buy groceries"}},
		{"add trailing period", "Add a task to buy groceries.", AddCommand{Title: "buy groceries"}},
		{"add keeps casing", "Add a task to Call Mom", AddCommand{Title: "Call Mom"}},
		{"add bare", "add milk", AddCommand{Title: "milk"}},
		{"create", "Create a task to water the plants", AddCommand{Title: "water the plants"}},
		{"list pending", "What's pending?", ListCommand{Status: models.TaskStatusPending}},
		{"list completed", "show completed tasks", ListCommand{Status: models.TaskStatusCompleted}},
		{"list done", "list what is done", ListCommand{Status: models.TaskStatusCompleted}},
		{"list all", "Show me all my tasks", ListCommand{Status: models.TaskStatusAll}},
		{"complete no", "Mark task no 8 as done", CompleteCommand{TaskID: 8}},
		{"complete hash", "complete task #12", CompleteCommand{TaskID: 12}},
		{"finish", "I finished task 4", CompleteCommand{TaskID: 4}},
		{"delete", "delete task 3", DeleteCommand{TaskID: 3}},
		{"remove", "Remove task 17 please", DeleteCommand{TaskID: 17}},
		{"update", "update task 5 to buy milk", UpdateCommand{TaskID: 5, Title: "buy milk"}},
		{"rename", "rename task 2 as Pay rent.", UpdateCommand{TaskID: 2, Title: "Pay rent"}},
		{"unknown", "hello there", UnknownCommand{}},
	}

	interpreter := NewInterpreter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := interpreter.Interpret(userSays(tt.message))
			if err != nil {
				t.Fatalf("Interpret(%q) error: %v", tt.message, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Interpret(%q) mismatch (-want +got):\n%s", tt.message, diff)
			}
		})
	}
}

func TestInterpretMissingParameters(t *testing.T) {
	tests := []struct {
		message  string
		intent   Intent
		guidance string
	}{
		{"add", IntentAdd, addGuidance},
		{"complete the task", IntentComplete, completeGuidance},
		{"please delete it", IntentDelete, deleteGuidance},
		{"update task 5", IntentUpdate, updateGuidance},
		{"rename my task to laundry", IntentUpdate, updateGuidance},
	}

	interpreter := NewInterpreter()
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			cmd, err := interpreter.Interpret(userSays(tt.message))
			if cmd != nil {
				t.Errorf("Interpret(%q) command = %#v, want nil", tt.message, cmd)
			}

			var extractionErr *ExtractionError
			if !errors.As(err, &extractionErr) {
				t.Fatalf("Interpret(%q) error = %v, want *ExtractionError", tt.message, err)
			}
			if extractionErr.Intent != tt.intent {
				t.Errorf("intent = %q, want %q", extractionErr.Intent, tt.intent)
			}
			if extractionErr.Guidance != tt.guidance {
				t.Errorf("guidance = %q, want %q", extractionErr.Guidance, tt.guidance)
			}
		})
	}
}

func TestInterpretReadsLatestUserTurn(t *testing.T) {
	history := []Turn{
		{Role: models.RoleUser, Content: "delete task 3"},
		{Role: models.RoleAssistant, Content: "I've deleted the task 'old'."},
		{Role: models.RoleUser, Content: "show my tasks"},
		{Role: models.RoleAssistant, Content: "add task to confuse"},
	}

	got, err := NewInterpreter().Interpret(history)
	if err != nil {
		t.Fatalf("Interpret() error: %v", err)
	}
	if diff := cmp.Diff(ListCommand{Status: models.TaskStatusAll}, got); diff != "" {
		t.Errorf("Interpret() mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpretWithoutUserTurn(t *testing.T) {
	for _, history := range [][]Turn{
		nil,
		{{Role: models.RoleAssistant, Content: "add task to buy milk"}},
	} {
		got, err := NewInterpreter().Interpret(history)
		if err != nil {
			t.Fatalf("Interpret() error: %v", err)
		}
		if _, ok := got.(UnknownCommand); !ok {
			t.Errorf("Interpret() = %#v, want UnknownCommand", got)
		}
	}
}

func TestInterpretAddTitleNeverEmpty(t *testing.T) {
	messages := []string{
		"add x",
		"create y",
		"new task",
		"add new task z",
		"Please add task: renew passport",
		"add a new task to call the bank.",
		"create task to",
	}

	interpreter := NewInterpreter()
	for _, message := range messages {
		cmd, err := interpreter.Interpret(userSays(message))
		if err != nil {
			var extractionErr *ExtractionError
			if !errors.As(err, &extractionErr) || extractionErr.Intent != IntentAdd {
				t.Errorf("Interpret(%q) error = %v, want add extraction error", message, err)
			}
			continue
		}

		add, ok := cmd.(AddCommand)
		if !ok {
			t.Errorf("Interpret(%q) = %#v, want AddCommand", message, cmd)
			continue
		}
		if add.Title == "" {
			t.Errorf("Interpret(%q) produced an empty title", message)
		}
	}
}

func TestInterpretTaskIDRoundTrip(t *testing.T) {
	interpreter := NewInterpreter()
	for _, id := range []int64{0, 1, 9, 42, 1000, 9223372036854775807} {
		complete, err := interpreter.Interpret(userSays(fmt.Sprintf("complete task %d", id)))
		if err != nil {
			t.Fatalf("complete %d: %v", id, err)
		}
		if diff := cmp.Diff(CompleteCommand{TaskID: id}, complete); diff != "" {
			t.Errorf("complete %d mismatch (-want +got):\n%s", id, diff)
		}

		del, err := interpreter.Interpret(userSays(fmt.Sprintf("delete task %d", id)))
		if err != nil {
			t.Fatalf("delete %d: %v", id, err)
		}
		if diff := cmp.Diff(DeleteCommand{TaskID: id}, del); diff != "" {
			t.Errorf("delete %d mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func TestInterpretOverflowingIDIsMissing(t *testing.T) {
	_, err := NewInterpreter().Interpret(userSays("delete task 99999999999999999999"))

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) || extractionErr.Intent != IntentDelete {
		t.Errorf("Interpret() error = %v, want delete extraction error", err)
	}
}
