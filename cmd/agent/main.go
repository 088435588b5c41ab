package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nexshop/marketplace/config"
	"github.com/nexshop/marketplace/internal/agent"
	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/internal/dispatch"
	"github.com/nexshop/marketplace/internal/gateway"
	"github.com/nexshop/marketplace/internal/state"
	"github.com/nexshop/marketplace/internal/store"
	"github.com/nexshop/marketplace/pkg/helpers"
)

// Terminal storefront client: the state container and dispatcher run
// locally against a file-backed table mirror, with the marketplace API
// as the remote and the Gemini agent driving the same dispatch surface
// a UI would.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-agent", cfg.Env)
	ctx := context.Background()

	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open data dir: %v", err)
	}
	if err := store.Seed(ctx, st); err != nil {
		log.Fatalf("failed to seed local tables: %v", err)
	}

	remote := gateway.NewClient(cfg.APIBaseURL, cfg.GatewayTimeout, logger)
	ops := application.NewService(st, remote, logger)

	container := state.NewContainer(ctx, ops, st, logger, func(msg string) {
		fmt.Println("· " + msg)
	})
	dispatcher := dispatch.NewDispatcher(container)

	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required for the chat agent")
	}
	assistant, err := agent.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, dispatcher, container, ops, logger)
	if err != nil {
		log.Fatalf("failed to start agent: %v", err)
	}

	fmt.Println("NexShop assistant ready. Type a message, or 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			break
		}
		reply, err := assistant.Send(ctx, line)
		if err != nil {
			fmt.Println("· The assistant is unavailable right now: " + err.Error())
			continue
		}
		if reply != "" {
			fmt.Println(reply)
		}
	}
}
