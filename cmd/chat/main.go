// Interactive console for the shift assistant. Talks to the backend's
// assistant-chat function when reachable, otherwise falls back to the
// direct Gemini path answering from the local cache.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"harborview.com/shiftman/assistant"
	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	employeeID := flag.String("employee", "demo-staff", "employee id the assistant answers for")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	store, err := cache.Open(cfg.CachePath, nil)
	if err != nil {
		log.Fatalf("failed to open cache: %v", err)
	}
	defer store.Close()

	api := v1.NewClient(cfg.BackendURL, "")
	bot := assistant.New(api, store, cfg.GeminiAPIKey, nil)

	ctx := context.Background()
	history := []assistant.Message{}

	fmt.Println("shift assistant ready, type a question (or 'quit')")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		prompt := strings.TrimSpace(scanner.Text())
		if prompt == "" {
			continue
		}
		if prompt == "quit" || prompt == "exit" {
			break
		}

		reply, err := bot.Chat(ctx, *employeeID, history, prompt)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		fmt.Println(reply)
		history = append(history,
			assistant.Message{Role: "user", Content: prompt},
			assistant.Message{Role: "assistant", Content: reply},
		)
	}
}
