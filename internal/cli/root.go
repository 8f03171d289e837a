// Package cli implements todochat, a local client that keeps tasks and
// conversations in a SQLite file.
package cli

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/todo-chatbot/internal/assistant"
	"github.com/adanyl0v/todo-chatbot/internal/config"
	"github.com/adanyl0v/todo-chatbot/internal/services"
	"github.com/adanyl0v/todo-chatbot/internal/storage"
)

const memoryPath = ":memory:"

type session struct {
	dbPath     string
	user       string
	configPath string
	verbose    bool

	logger        zerolog.Logger
	db            *sql.DB
	tasks         services.TaskService
	conversations services.ConversationService
	assistant     *assistant.Assistant
}

func NewRootCommand() *cobra.Command {
	s := new(session)

	root := &cobra.Command{
		Use:   "todochat",
		Short: "Manage your todos by chatting",
		Long: `todochat keeps a todo list you manage in plain language.

Ask it to add, list, complete, delete or update tasks, e.g.
  todochat say "add a task to buy groceries"
  todochat say "what's pending?"`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&s.dbPath, "db", "", "path to the SQLite database (default <config dir>/todochat/todochat.db)")
	flags.StringVarP(&s.user, "user", "u", "", "user the tasks belong to")
	flags.StringVar(&s.configPath, "config", "", "path to a YAML config file")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "log debug output and tool calls")

	root.AddCommand(
		newChatCommand(s),
		newSayCommand(s),
		newHistoryCommand(s),
		newConversationsCommand(s),
		newTasksCommand(s),
	)
	return root
}

func (s *session) open(cmd *cobra.Command) error {
	cfg, err := config.ReadLocal(s.configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if !cmd.Flags().Changed("db") {
		s.dbPath = cfg.SQLite.Path
	}
	if !cmd.Flags().Changed("user") {
		s.user = cfg.User
	}
	if strings.TrimSpace(s.user) == "" {
		return fmt.Errorf("user is required")
	}

	level := zerolog.WarnLevel
	if s.verbose {
		level = zerolog.DebugLevel
	}
	s.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.DateTime}).
		Level(level).
		With().
		Timestamp().
		Str("env", cfg.Env).
		Logger()

	if s.dbPath != memoryPath {
		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}
	s.db, err = storage.OpenSQLite(s.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	s.logger.Debug().
		Str("path", s.dbPath).
		Str("user_id", s.user).
		Msg("opened database")

	s.tasks = services.NewSQLiteTaskService(s.logger, s.db)
	s.conversations = services.NewSQLiteConversationService(s.logger, s.db)
	s.assistant = assistant.New(s.logger, s.tasks, s.conversations)
	return nil
}

// withStore opens the database around run.
func (s *session) withStore(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := s.open(cmd); err != nil {
			return err
		}
		defer func() {
			if closeErr := s.db.Close(); err == nil {
				err = closeErr
			}
		}()
		return run(cmd, args)
	}
}
