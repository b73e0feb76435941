package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"netmigration/widcollector/commands"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Cancelling the context closes open browser sessions before exit
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	commands.ExecuteContext(ctx)
}
