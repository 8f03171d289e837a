package main

import (
	"os"

	"github.com/adanyl0v/todo-chatbot/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
