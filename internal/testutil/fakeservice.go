// Package testutil provides in-memory services for tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adanyl0v/todo-chatbot/internal/models"
	"github.com/adanyl0v/todo-chatbot/internal/services"
)

// FakeTaskService is an in-memory implementation of services.TaskService.
type FakeTaskService struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*models.Task

	// Error injection
	CreateTaskErr   error
	ListTasksErr    error
	CompleteTaskErr error
	UpdateTaskErr   error
	DeleteTaskErr   error
}

func NewFakeTaskService() *FakeTaskService {
	return &FakeTaskService{
		nextID: 1,
		tasks:  make(map[int64]*models.Task),
	}
}

// AddTask stores a task directly and returns its ID.
func (f *FakeTaskService) AddTask(userID, title string, completed bool) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(userID, title, "", completed).ID
}

// Task returns a copy of the stored task.
func (f *FakeTaskService) Task(id int64) (models.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return *task, true
}

func (f *FakeTaskService) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func (f *FakeTaskService) CreateTask(_ context.Context, params services.CreateTaskParams) (*models.Task, error) {
	if f.CreateTaskErr != nil {
		return nil, f.CreateTaskErr
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, services.ErrEmptyTitle
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	task := f.insert(params.UserID, title, params.Description, false)
	return copyTask(task), nil
}

func (f *FakeTaskService) ListTasks(_ context.Context, userID string, status models.TaskStatus) ([]*models.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := make([]*models.Task, 0)
	for _, task := range f.tasks {
		if task.UserID != userID {
			continue
		}
		if status == models.TaskStatusPending && task.Completed {
			continue
		}
		if status == models.TaskStatusCompleted && !task.Completed {
			continue
		}
		tasks = append(tasks, copyTask(task))
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (f *FakeTaskService) CompleteTask(_ context.Context, params services.TaskParams) (*models.Task, error) {
	if f.CompleteTaskErr != nil {
		return nil, f.CompleteTaskErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	task, err := f.owned(params.UserID, params.ID)
	if err != nil {
		return nil, err
	}
	task.Completed = true
	task.UpdatedAt = time.Now()
	return copyTask(task), nil
}

func (f *FakeTaskService) UpdateTask(_ context.Context, params services.UpdateTaskParams) (*models.Task, error) {
	if f.UpdateTaskErr != nil {
		return nil, f.UpdateTaskErr
	}

	var title string
	if params.Title != nil {
		title = strings.TrimSpace(*params.Title)
		if title == "" {
			return nil, services.ErrEmptyTitle
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	task, err := f.owned(params.UserID, params.ID)
	if err != nil {
		return nil, err
	}
	if params.Title != nil {
		task.Title = title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	task.UpdatedAt = time.Now()
	return copyTask(task), nil
}

func (f *FakeTaskService) DeleteTask(_ context.Context, params services.TaskParams) (*models.Task, error) {
	if f.DeleteTaskErr != nil {
		return nil, f.DeleteTaskErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	task, err := f.owned(params.UserID, params.ID)
	if err != nil {
		return nil, err
	}
	delete(f.tasks, task.ID)
	return copyTask(task), nil
}

func (f *FakeTaskService) insert(userID, title, description string, completed bool) *models.Task {
	now := time.Now()
	task := &models.Task{
		ID:          f.nextID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasks[task.ID] = task
	f.nextID++
	return task
}

func (f *FakeTaskService) owned(userID string, id int64) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return nil, services.ErrTaskNotFound
	}
	return task, nil
}

func copyTask(task *models.Task) *models.Task {
	c := *task
	return &c
}

// FakeConversationService is an in-memory implementation of
// services.ConversationService.
type FakeConversationService struct {
	mu                 sync.Mutex
	nextConversationID int64
	nextMessageID      int64
	conversations      map[int64]*models.Conversation
	messages           []*models.Message

	// Error injection
	CreateConversationErr error
	AppendMessageErr      error
	ListMessagesErr       error
}

func NewFakeConversationService() *FakeConversationService {
	return &FakeConversationService{
		nextConversationID: 1,
		nextMessageID:      1,
		conversations:      make(map[int64]*models.Conversation),
	}
}

// Messages returns copies of every stored message of the conversation.
func (f *FakeConversationService) Messages(conversationID int64) []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var messages []models.Message
	for _, message := range f.messages {
		if message.ConversationID == conversationID {
			messages = append(messages, *message)
		}
	}
	return messages
}

func (f *FakeConversationService) CreateConversation(_ context.Context, userID string) (*models.Conversation, error) {
	if f.CreateConversationErr != nil {
		return nil, f.CreateConversationErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	conversation := &models.Conversation{
		ID:        f.nextConversationID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.conversations[conversation.ID] = conversation
	f.nextConversationID++

	c := *conversation
	return &c, nil
}

func (f *FakeConversationService) GetConversation(_ context.Context, userID string, conversationID int64) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conversation, ok := f.conversations[conversationID]
	if !ok || conversation.UserID != userID {
		return nil, services.ErrConversationNotFound
	}
	c := *conversation
	return &c, nil
}

func (f *FakeConversationService) ListConversations(_ context.Context, userID string) ([]*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conversations := make([]*models.Conversation, 0)
	for _, conversation := range f.conversations {
		if conversation.UserID == userID {
			c := *conversation
			conversations = append(conversations, &c)
		}
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].ID > conversations[j].ID
	})
	return conversations, nil
}

func (f *FakeConversationService) AppendMessage(_ context.Context, params services.AppendMessageParams) (*models.Message, error) {
	if f.AppendMessageErr != nil {
		return nil, f.AppendMessageErr
	}
	if !params.Role.Valid() {
		return nil, services.ErrInvalidRole
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	conversation, ok := f.conversations[params.ConversationID]
	if !ok || conversation.UserID != params.UserID {
		return nil, services.ErrConversationNotFound
	}

	message := &models.Message{
		ID:             f.nextMessageID,
		UserID:         params.UserID,
		ConversationID: params.ConversationID,
		Role:           params.Role,
		Content:        params.Content,
		CreatedAt:      time.Now(),
	}
	f.messages = append(f.messages, message)
	f.nextMessageID++
	conversation.UpdatedAt = message.CreatedAt

	m := *message
	return &m, nil
}

func (f *FakeConversationService) ListMessages(_ context.Context, userID string, conversationID int64) ([]*models.Message, error) {
	if f.ListMessagesErr != nil {
		return nil, f.ListMessagesErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	messages := make([]*models.Message, 0)
	for _, message := range f.messages {
		if message.ConversationID == conversationID && message.UserID == userID {
			m := *message
			messages = append(messages, &m)
		}
	}
	return messages, nil
}
