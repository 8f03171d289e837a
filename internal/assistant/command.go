// Package assistant turns chat messages into task operations and replies.
package assistant

import (
	"fmt"

	"github.com/adanyl0v/todo-chatbot/internal/models"
)

// Intent names the operation a message asks for.
type Intent string

const (
	IntentAdd      Intent = "add"
	IntentList     Intent = "list"
	IntentComplete Intent = "complete"
	IntentDelete   Intent = "delete"
	IntentUpdate   Intent = "update"
	IntentUnknown  Intent = "unknown"
)

// Command is an interpreted message. The concrete type carries the
// parameters of its intent.
type Command interface {
	Intent() Intent
}

type AddCommand struct {
	Title string
}

type ListCommand struct {
	Status models.TaskStatus
}

type CompleteCommand struct {
	TaskID int64
}

type DeleteCommand struct {
	TaskID int64
}

type UpdateCommand struct {
	TaskID int64
	Title  string
}

type UnknownCommand struct{}

func (AddCommand) Intent() Intent      { return IntentAdd }
func (ListCommand) Intent() Intent     { return IntentList }
func (CompleteCommand) Intent() Intent { return IntentComplete }
func (DeleteCommand) Intent() Intent   { return IntentDelete }
func (UpdateCommand) Intent() Intent   { return IntentUpdate }
func (UnknownCommand) Intent() Intent  { return IntentUnknown }

// Turn is one entry of a conversation history.
type Turn struct {
	Role    models.Role
	Content string
}

// ExtractionError reports a recognized intent whose required parameters
// could not be found in the message. Guidance is shown to the user as is.
type ExtractionError struct {
	Intent   Intent
	Guidance string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: missing parameters", e.Intent)
}
