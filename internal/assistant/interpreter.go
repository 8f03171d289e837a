package assistant

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/adanyl0v/todo-chatbot/internal/models"
)

const (
	addGuidance      = "I couldn't identify the task to add. Please tell me what the task is."
	completeGuidance = "I couldn't identify which task to complete. Please specify the task number."
	deleteGuidance   = "I couldn't identify which task to delete. Please specify the task number."
	updateGuidance   = "I couldn't identify which task to update or what to change it to. Please specify both the task number and the new title."
)

// rule pairs a trigger test on the lowercased message with the extractor
// producing the command. Rules are tried in order and the first trigger
// that fires decides the intent, even if its extractor then fails.
type rule struct {
	intent  Intent
	match   func(lower string) bool
	extract func(message string) (Command, error)
}

var defaultRules = []rule{
	{intent: IntentAdd, match: matchAdd, extract: extractAdd},
	{intent: IntentList, match: matchList, extract: extractList},
	{intent: IntentComplete, match: matchComplete, extract: extractComplete},
	{intent: IntentDelete, match: matchDelete, extract: extractDelete},
	{intent: IntentUpdate, match: matchUpdate, extract: extractUpdate},
}

var (
	// Tried top to bottom; the first match wins regardless of quality.
	addTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)add\s+(?:(?:a|an|the|new)\s+)*task\s+(?:to\s+)?(.+?)(?:\.|$)`),
		regexp.MustCompile(`(?i)(?:add|create)\s+(?:(?:a|an|the|new)\s+)*(?:task\s+)?(?:to\s+)?(.+?)(?:\.|$)`),
		regexp.MustCompile(`(?i)(?:add|create|new)\s+(?:task\s+)?(.+?)(?:\.|$)`),
	}
	addLooseStrip  = regexp.MustCompile(`(?i)add|create|task`)
	addStrictStrip = regexp.MustCompile(`(?i)add|create|new|task|please`)

	completeIDPattern = regexp.MustCompile(`(?i)task\s+(?:no\s+|#)?(\d+)`)
	taskIDPattern     = regexp.MustCompile(`(?i)task\s+(\d+)`)
	newTitlePattern   = regexp.MustCompile(`(?i)(?:to|as)\s+(.+?)(?:\.|$)`)
)

// Interpreter maps the latest user message of a conversation to a Command.
type Interpreter struct {
	rules []rule
}

func NewInterpreter() *Interpreter {
	return &Interpreter{rules: defaultRules}
}

// Interpret returns UnknownCommand when no rule fires and an
// *ExtractionError when one fires without its parameters.
func (i *Interpreter) Interpret(history []Turn) (Command, error) {
	message, ok := latestUserMessage(history)
	if !ok {
		return UnknownCommand{}, nil
	}

	lower := strings.ToLower(message)
	for _, r := range i.rules {
		if r.match(lower) {
			return r.extract(message)
		}
	}
	return UnknownCommand{}, nil
}

func latestUserMessage(history []Turn) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			return history[i].Content, true
		}
	}
	return "", false
}

func matchAdd(m string) bool {
	return containsAny(m, "add", "create", "new")
}

func extractAdd(message string) (Command, error) {
	title := ""
	if match, ok := firstSubmatch(addTitlePatterns, message); ok {
		title = strings.TrimSpace(match)
	} else {
		title = strip(addLooseStrip, message)
	}

	if utf8.RuneCountInString(title) < 2 {
		title = strip(addStrictStrip, message)
	}
	if title == "" {
		return nil, &ExtractionError{Intent: IntentAdd, Guidance: addGuidance}
	}
	return AddCommand{Title: title}, nil
}

func matchList(m string) bool {
	return containsAny(m, "show", "list", "display", "all my tasks") ||
		(strings.Contains(m, "what") && containsAny(m, "task", "pending", "complete", "all")) ||
		(strings.Contains(m, "all") && strings.Contains(m, "pending")) ||
		(strings.Contains(m, "my") && strings.Contains(m, "pending") && strings.Contains(m, "task"))
}

func extractList(message string) (Command, error) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "pending"):
		return ListCommand{Status: models.TaskStatusPending}, nil
	case containsAny(lower, "complete", "done"):
		return ListCommand{Status: models.TaskStatusCompleted}, nil
	default:
		return ListCommand{Status: models.TaskStatusAll}, nil
	}
}

func matchComplete(m string) bool {
	return containsAny(m, "complete", "done", "finish") && strings.Contains(m, "task")
}

func extractComplete(message string) (Command, error) {
	id, ok := parseTaskID(completeIDPattern, message)
	if !ok {
		return nil, &ExtractionError{Intent: IntentComplete, Guidance: completeGuidance}
	}
	return CompleteCommand{TaskID: id}, nil
}

func matchDelete(m string) bool {
	return containsAny(m, "delete", "remove")
}

func extractDelete(message string) (Command, error) {
	id, ok := parseTaskID(taskIDPattern, message)
	if !ok {
		return nil, &ExtractionError{Intent: IntentDelete, Guidance: deleteGuidance}
	}
	return DeleteCommand{TaskID: id}, nil
}

func matchUpdate(m string) bool {
	return containsAny(m, "update", "change", "rename")
}

func extractUpdate(message string) (Command, error) {
	id, ok := parseTaskID(taskIDPattern, message)
	if !ok {
		return nil, &ExtractionError{Intent: IntentUpdate, Guidance: updateGuidance}
	}

	title, ok := firstSubmatch([]*regexp.Regexp{newTitlePattern}, message)
	title = strings.TrimSpace(title)
	if !ok || title == "" {
		return nil, &ExtractionError{Intent: IntentUpdate, Guidance: updateGuidance}
	}
	return UpdateCommand{TaskID: id, Title: title}, nil
}

func parseTaskID(pattern *regexp.Regexp, message string) (int64, bool) {
	match := pattern.FindStringSubmatch(message)
	if match == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func firstSubmatch(patterns []*regexp.Regexp, message string) (string, bool) {
	for _, pattern := range patterns {
		if match := pattern.FindStringSubmatch(message); match != nil {
			return match[1], true
		}
	}
	return "", false
}

// strip removes every occurrence of pattern and collapses whitespace.
func strip(pattern *regexp.Regexp, message string) string {
	return strings.Join(strings.Fields(pattern.ReplaceAllString(message, " ")), " ")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
