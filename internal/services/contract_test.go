package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todo-chatbot/internal/models"
	"github.com/adanyl0v/todo-chatbot/internal/services"
)

func ptr[T any](v T) *T {
	return &v
}

func titles(tasks []*models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func testTaskService(t *testing.T, newService func(t *testing.T) services.TaskService) {
	ctx := context.Background()

	t.Run("create trims title", func(t *testing.T) {
		svc := newService(t)

		task, err := svc.CreateTask(ctx, services.CreateTaskParams{UserID: "u1", Title: "  buy milk  ", Description: "2l"})
		require.NoError(t, err)

		assert.NotZero(t, task.ID)
		assert.Equal(t, "u1", task.UserID)
		assert.Equal(t, "buy milk", task.Title)
		assert.Equal(t, "2l", task.Description)
		assert.False(t, task.Completed)
		assert.False(t, task.CreatedAt.IsZero())
	})

	t.Run("create rejects empty title", func(t *testing.T) {
		svc := newService(t)

		_, err := svc.CreateTask(ctx, services.CreateTaskParams{UserID: "u1", Title: " \t "})
		assert.ErrorIs(t, err, services.ErrEmptyTitle)
	})

	t.Run("list filters by owner and status", func(t *testing.T) {
		svc := newService(t)

		first, err := svc.CreateTask(ctx, services.CreateTaskParams{UserID: "u1", Title: "first"})
		require.NoError(t, err)
		_, err = svc.CreateTask(ctx, services.CreateTaskParams{UserID: "u1", Title: "second"})
		require.NoError(t, err)
		_, err = svc.CreateTask(ctx, services.CreateTaskParams{UserID: "u2", Title: "foreign"})
		require.NoError(t, err)
		_, err = svc.CompleteTask(ctx, services.TaskParams{UserID: "u1", ID: first.ID})
		require.NoError(t, err)

		all, err := svc.ListTasks(ctx, "u1", models.TaskStatusAll)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, titles(all))

		pending, err := svc.ListTasks(ctx, "u1", models.TaskStatusPending)
		require.NoError(t, err)
		assert.Equal(t, []string{"second"}, titles(pending))

		completed, err := svc.ListTasks(ctx, "u1", models.TaskStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, []string{"first"}, titles(completed))

		none, err := svc.ListTasks(ctx, "nobody", models.TaskStatusAll)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("complete is idempotent", func(t *testing.T) {
		svc := newService(t)

		task, err := svc.CreateTask(ctx, services.CreateTaskParams{UserID: "u1", Title: "walk"})
		require.NoError(t, err)

		last := task.UpdatedAt
		for i := 0; i < 2; i++ {
			time.Sleep(time.Millisecond)
			completed, err := svc.CompleteTask(ctx, services.TaskParams{UserID: "u1", ID: task.ID})
			require.NoError(t, err)
			assert.True(t, completed.Completed)
			assert.Equal(t, "walk", completed.Title)
			assert.Equal(t, "u1", completed.UserID)
			assert.True(t, completed.CreatedAt.Equal(task.CreatedAt))
			assert.True(t, completed.UpdatedAt.After(last), "updated_at %v not after %v", completed.UpdatedAt, last)
			last = completed.UpdatedAt
		}
	})

	t.Run("update applies given fields", func(t *testing.T) {
		svc := newService(t)

		task, err := svc.CreateTask(ctx, services.CreateTaskParams{UserID: "u1", Title: "old", Description: "keep"})
		require.NoError(t, err)

		time.Sleep(time.Millisecond)
		updated, err := svc.UpdateTask(ctx, services.UpdateTaskParams{UserID: "u1", ID: task.ID, Title: ptr(" new ")})
		require.NoError(t, err)
		assert.Equal(t, "new", updated.Title)
		assert.Equal(t, "keep", updated.Description)
		assert.Equal(t, "u1", updated.UserID)
		assert.True(t, updated.CreatedAt.Equal(task.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(task.UpdatedAt), "updated_at %v not after %v", updated.UpdatedAt, task.UpdatedAt)

		previous := updated.UpdatedAt
		time.Sleep(time.Millisecond)
		updated, err = svc.UpdateTask(ctx, services.UpdateTaskParams{UserID: "u1", ID: task.ID, Description: ptr("changed")})
		require.NoError(t, err)
		assert.Equal(t, "new", updated.Title)
		assert.Equal(t, "changed", updated.Description)
		assert.True(t, updated.CreatedAt.Equal(task.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(previous), "updated_at %v not after %v", updated.UpdatedAt, previous)

		_, err = svc.UpdateTask(ctx, services.UpdateTaskParams{UserID: "u1", ID: task.ID, Title: ptr("")})
		assert.ErrorIs(t, err, services.ErrEmptyTitle)
	})

	t.Run("delete is physical", func(t *testing.T) {
		svc := newService(t)

		task, err := svc.CreateTask(ctx, services.CreateTaskParams{UserID: "u1", Title: "gone"})
		require.NoError(t, err)

		deleted, err := svc.DeleteTask(ctx, services.TaskParams{UserID: "u1", ID: task.ID})
		require.NoError(t, err)
		assert.Equal(t, task.ID, deleted.ID)
		assert.Equal(t, "gone", deleted.Title)

		_, err = svc.DeleteTask(ctx, services.TaskParams{UserID: "u1", ID: task.ID})
		assert.ErrorIs(t, err, services.ErrTaskNotFound)

		all, err := svc.ListTasks(ctx, "u1", models.TaskStatusAll)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("foreign task is not found", func(t *testing.T) {
		svc := newService(t)

		task, err := svc.CreateTask(ctx, services.CreateTaskParams{UserID: "u1", Title: "mine"})
		require.NoError(t, err)
		params := services.TaskParams{UserID: "u2", ID: task.ID}

		_, err = svc.CompleteTask(ctx, params)
		assert.ErrorIs(t, err, services.ErrTaskNotFound)
		_, err = svc.UpdateTask(ctx, services.UpdateTaskParams{UserID: "u2", ID: task.ID, Title: ptr("theirs")})
		assert.ErrorIs(t, err, services.ErrTaskNotFound)
		_, err = svc.DeleteTask(ctx, params)
		assert.ErrorIs(t, err, services.ErrTaskNotFound)

		all, err := svc.ListTasks(ctx, "u1", models.TaskStatusAll)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "mine", all[0].Title)
		assert.False(t, all[0].Completed)
	})
}

func testConversationService(t *testing.T, newService func(t *testing.T) services.ConversationService) {
	ctx := context.Background()

	t.Run("append and list in order", func(t *testing.T) {
		svc := newService(t)

		conversation, err := svc.CreateConversation(ctx, "u1")
		require.NoError(t, err)

		for _, turn := range []struct {
			role    models.Role
			content string
		}{
			{models.RoleUser, "add a task to buy milk"},
			{models.RoleAssistant, "I've added the task 'buy milk' to your list."},
			{models.RoleUser, "thanks"},
		} {
			_, err := svc.AppendMessage(ctx, services.AppendMessageParams{
				UserID:         "u1",
				ConversationID: conversation.ID,
				Role:           turn.role,
				Content:        turn.content,
			})
			require.NoError(t, err)
		}

		messages, err := svc.ListMessages(ctx, "u1", conversation.ID)
		require.NoError(t, err)
		require.Len(t, messages, 3)
		assert.Equal(t, models.RoleUser, messages[0].Role)
		assert.Equal(t, "add a task to buy milk", messages[0].Content)
		assert.Equal(t, models.RoleAssistant, messages[1].Role)
		assert.Equal(t, "thanks", messages[2].Content)
		assert.Less(t, messages[0].ID, messages[1].ID)
	})

	t.Run("get checks owner", func(t *testing.T) {
		svc := newService(t)

		conversation, err := svc.CreateConversation(ctx, "u1")
		require.NoError(t, err)

		got, err := svc.GetConversation(ctx, "u1", conversation.ID)
		require.NoError(t, err)
		assert.Equal(t, conversation.ID, got.ID)

		_, err = svc.GetConversation(ctx, "u2", conversation.ID)
		assert.ErrorIs(t, err, services.ErrConversationNotFound)
		_, err = svc.GetConversation(ctx, "u1", conversation.ID+1000)
		assert.ErrorIs(t, err, services.ErrConversationNotFound)
	})

	t.Run("append rejects foreign conversation and bad role", func(t *testing.T) {
		svc := newService(t)

		conversation, err := svc.CreateConversation(ctx, "u1")
		require.NoError(t, err)

		_, err = svc.AppendMessage(ctx, services.AppendMessageParams{
			UserID: "u2", ConversationID: conversation.ID, Role: models.RoleUser, Content: "hi",
		})
		assert.ErrorIs(t, err, services.ErrConversationNotFound)

		_, err = svc.AppendMessage(ctx, services.AppendMessageParams{
			UserID: "u1", ConversationID: conversation.ID, Role: models.Role("system"), Content: "hi",
		})
		assert.ErrorIs(t, err, services.ErrInvalidRole)

		messages, err := svc.ListMessages(ctx, "u1", conversation.ID)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("list conversations most recent first", func(t *testing.T) {
		svc := newService(t)

		older, err := svc.CreateConversation(ctx, "u1")
		require.NoError(t, err)
		newer, err := svc.CreateConversation(ctx, "u1")
		require.NoError(t, err)
		_, err = svc.CreateConversation(ctx, "u2")
		require.NoError(t, err)

		conversations, err := svc.ListConversations(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, conversations, 2)
		assert.Equal(t, newer.ID, conversations[0].ID)

		_, err = svc.AppendMessage(ctx, services.AppendMessageParams{
			UserID: "u1", ConversationID: older.ID, Role: models.RoleUser, Content: "bump",
		})
		require.NoError(t, err)

		conversations, err = svc.ListConversations(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, conversations, 2)
		assert.Equal(t, older.ID, conversations[0].ID)
	})
}
