package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-chatbot/internal/assistant"
	"github.com/adanyl0v/todo-chatbot/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleCompleteTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleChat(c *gin.Context)
	HandleGetConversations(c *gin.Context)
	HandleGetMessages(c *gin.Context)

	HandleHealth(c *gin.Context)
}

// Chatter runs a single chat turn.
type Chatter interface {
	Chat(ctx context.Context, params assistant.ChatParams) (*assistant.ChatResult, error)
}

type handlerImpl struct {
	logger        zerolog.Logger
	auth          services.AuthService
	sessions      services.SessionService
	tasks         services.TaskService
	conversations services.ConversationService
	chatter       Chatter
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	sessionService services.SessionService,
	taskService services.TaskService,
	conversationService services.ConversationService,
	chatter Chatter,
) Handler {
	return &handlerImpl{
		logger:        logger,
		auth:          authService,
		sessions:      sessionService,
		tasks:         taskService,
		conversations: conversationService,
		chatter:       chatter,
	}
}

// RegisterRoutes mounts the handler on router.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/health", h.HandleHealth)

	api := router.Group("/api/v1")

	authRouter := api.Group("/auth")
	authRouter.POST("/login", h.HandleLogin)
	authRouter.POST("/refresh", h.HandleRefresh)
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/logout", h.HandleAuthMiddleware, h.HandleLogout)

	protected := api.Group("", h.HandleAuthMiddleware)
	registerProtectedRoutes(protected, h)
}

func registerProtectedRoutes(router gin.IRouter, h Handler) {
	router.POST("/chat", h.HandleChat)
	router.GET("/conversations", h.HandleGetConversations)
	router.GET("/conversations/:id/messages", h.HandleGetMessages)

	tasksRouter := router.Group("/tasks")
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.PATCH("/:id", h.HandleUpdateTask)
	tasksRouter.POST("/:id/complete", h.HandleCompleteTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)
}
