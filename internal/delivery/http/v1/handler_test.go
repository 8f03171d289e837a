package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todo-chatbot/internal/assistant"
	"github.com/adanyl0v/todo-chatbot/internal/models"
	"github.com/adanyl0v/todo-chatbot/internal/services"
	"github.com/adanyl0v/todo-chatbot/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	services.AuthService
	sessionID string
	parseErr  error
}

func (f fakeAuth) ParseJWTToken(string) (*jwt.RegisteredClaims, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return &jwt.RegisteredClaims{Subject: f.sessionID}, nil
}

type fakeSessions map[string]*models.Session

func (f fakeSessions) GetSessionByID(_ context.Context, sessionID string) (*models.Session, error) {
	session, ok := f[sessionID]
	if !ok {
		return nil, services.ErrSessionNotFound
	}
	return session, nil
}

type fixture struct {
	router        *gin.Engine
	tasks         *testutil.FakeTaskService
	conversations *testutil.FakeConversationService
}

// newFixture serves the protected routes as user u1 without tokens.
func newFixture() fixture {
	tasks := testutil.NewFakeTaskService()
	conversations := testutil.NewFakeConversationService()
	h := New(zerolog.Nop(), nil, nil, tasks, conversations,
		assistant.New(zerolog.Nop(), tasks, conversations))

	router := gin.New()
	router.GET("/health", h.HandleHealth)
	api := router.Group("/api/v1", func(c *gin.Context) {
		c.Set(userIDCtxKey, "u1")
	})
	registerProtectedRoutes(api, h)

	return fixture{router: router, tasks: tasks, conversations: conversations}
}

func (f fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	w := newFixture().do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestChatEndpoint(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/api/v1/chat", `{"message":"Add a task to buy groceries"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[chatResponse](t, w)
	assert.Equal(t, int64(1), resp.ConversationID)
	assert.Equal(t, "I've added the task 'buy groceries' to your list.", resp.Response)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "add_task", resp.ToolCalls[0].Name)

	w = f.do(t, http.MethodPost, "/api/v1/chat", `{"conversation_id":1,"message":"hello there"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tool_calls":[]`)

	w = f.do(t, http.MethodGet, "/api/v1/conversations/1/messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	messages := decode[[]messageResponse](t, w)
	require.Len(t, messages, 4)
	assert.Equal(t, models.RoleUser, messages[2].Role)
	assert.Equal(t, "hello there", messages[2].Content)
}

func TestChatEndpointErrors(t *testing.T) {
	f := newFixture()
	_, err := f.conversations.CreateConversation(context.Background(), "someone-else")
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/v1/chat", `{"conversation_id":1,"message":"show my tasks"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/chat", `{"conversation_id":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/conversations/1/messages", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/conversations/abc/messages", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetConversations(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, _ = f.conversations.CreateConversation(ctx, "u1")
	_, _ = f.conversations.CreateConversation(ctx, "u2")
	_, _ = f.conversations.CreateConversation(ctx, "u1")

	w := f.do(t, http.MethodGet, "/api/v1/conversations", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[[]conversationResponse](t, w)
	require.Len(t, resp, 2)
	assert.Equal(t, int64(3), resp[0].ID)
	assert.Equal(t, int64(1), resp[1].ID)
}

func TestTaskEndpoints(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/api/v1/tasks", `{"title":"  buy milk ","description":"2 liters"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[getTaskResponse](t, w)
	assert.Equal(t, "buy milk", created.Title)
	assert.Equal(t, "pending", created.Status)

	w = f.do(t, http.MethodPatch, "/api/v1/tasks/1", `{"title":"buy oat milk"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "buy oat milk", decode[getTaskResponse](t, w).Title)

	w = f.do(t, http.MethodPost, "/api/v1/tasks/1/complete", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[getTaskResponse](t, w).Completed)

	w = f.do(t, http.MethodGet, "/api/v1/tasks?status=completed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]getTaskResponse](t, w), 1)

	w = f.do(t, http.MethodGet, "/api/v1/tasks?status=pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = f.do(t, http.MethodDelete, "/api/v1/tasks/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodDelete, "/api/v1/tasks/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTaskAcceptsChatLengthTitle(t *testing.T) {
	f := newFixture()
	title := strings.Repeat("long ", 100)

	w := f.do(t, http.MethodPost, "/api/v1/tasks", `{"title":"`+title+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, strings.TrimSpace(title), decode[getTaskResponse](t, w).Title)

	chat := f.do(t, http.MethodPost, "/api/v1/chat", `{"message":"add `+title+`"}`)
	require.Equal(t, http.StatusOK, chat.Code)
	assert.Equal(t, 2, f.tasks.Len())
}

func TestTaskEndpointErrors(t *testing.T) {
	f := newFixture()
	f.tasks.AddTask("u2", "foreign", false)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"bad status", http.MethodGet, "/api/v1/tasks?status=archived", "", http.StatusBadRequest},
		{"missing title", http.MethodPost, "/api/v1/tasks", `{}`, http.StatusBadRequest},
		{"blank title", http.MethodPost, "/api/v1/tasks", `{"title":"   "}`, http.StatusBadRequest},
		{"bad id", http.MethodPost, "/api/v1/tasks/x/complete", "", http.StatusBadRequest},
		{"foreign complete", http.MethodPost, "/api/v1/tasks/1/complete", "", http.StatusNotFound},
		{"foreign update", http.MethodPatch, "/api/v1/tasks/1", `{"title":"mine"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}

	task, ok := f.tasks.Task(1)
	require.True(t, ok)
	assert.Equal(t, "foreign", task.Title)
}

func TestAuthMiddleware(t *testing.T) {
	const userAgent = "middleware-test"
	fingerprint := `{"client_ip":"192.0.2.1","user_agent":"` + userAgent + `"}`
	sessions := fakeSessions{
		"s1": {ID: "s1", UserID: "u1", Fingerprint: fingerprint, ExpiresAt: time.Now().Add(time.Hour)},
	}

	tests := []struct {
		name   string
		header string
		auth   fakeAuth
		want   int
	}{
		{"valid", "Bearer token", fakeAuth{sessionID: "s1"}, http.StatusOK},
		{"no header", "", fakeAuth{sessionID: "s1"}, http.StatusUnauthorized},
		{"not bearer", "Basic token", fakeAuth{sessionID: "s1"}, http.StatusUnauthorized},
		{"bad token", "Bearer token", fakeAuth{parseErr: jwt.ErrTokenMalformed}, http.StatusUnauthorized},
		{"expired without cookie", "Bearer token", fakeAuth{parseErr: jwt.ErrTokenExpired}, http.StatusUnauthorized},
		{"unknown session", "Bearer token", fakeAuth{sessionID: "s2"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(zerolog.Nop(), tt.auth, sessions, nil, nil, nil).(*handlerImpl)

			router := gin.New()
			router.GET("/me", h.HandleAuthMiddleware, func(c *gin.Context) {
				userID, _ := getStringFromContext(c, userIDCtxKey)
				c.String(http.StatusOK, userID)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			req.Header.Set("User-Agent", userAgent)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			}
		})
	}
}
