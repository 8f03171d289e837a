package main

import (
	"os"

	"github.com/adanyl0v/todo-chatbot/internal/app"
)

func main() {
	a := app.New()
	a.MustReadEnv()
	a.MustInitApplicationLogger(os.Stdout)

	a.MustConnectPostgres()
	defer a.DisconnectPostgres()
	a.MustMigratePostgres()

	a.MustListenAndServeHTTP()
}
