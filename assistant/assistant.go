// Package assistant is the AI helper employees chat with. The
// conversation normally runs through the backend's assistant-chat function;
// when that is unreachable and a Gemini key is configured, the chat runs
// directly against the model with tools answering from the local cache, so
// the assistant keeps working in degraded mode like the rest of the app.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
)

const systemPrompt = `
You are the Harborview hotel shift assistant. You help hotel staff with
their schedule, time tracking and leave questions.

Guidelines:
1. Answer from the provided tools; do not invent shifts or hours.
2. Keep answers short and practical, this is a phone screen.
3. For anything about pay or contracts, tell the user to contact the
   duty manager instead of guessing.
`

type Message struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

type Assistant struct {
	api    *v1.Client
	store  *cache.Store
	apiKey string
	log    *slog.Logger
}

func New(api *v1.Client, store *cache.Store, geminiAPIKey string, log *slog.Logger) *Assistant {
	if log == nil {
		log = slog.Default()
	}
	return &Assistant{
		api:    api,
		store:  store,
		apiKey: geminiAPIKey,
		log:    log,
	}
}

type chatPayload struct {
	EmployeeID string    `json:"employeeId"`
	History    []Message `json:"history"`
	Prompt     string    `json:"prompt"`
}

type chatReply struct {
	Reply string `json:"reply"`
}

// Chat sends the prompt with history and returns the assistant's reply.
func (a *Assistant) Chat(ctx context.Context, employeeID string, history []Message, prompt string) (string, error) {
	raw, err := a.api.Functions.Invoke(ctx, "assistant-chat", chatPayload{
		EmployeeID: employeeID,
		History:    history,
		Prompt:     prompt,
	})
	if err == nil {
		var reply chatReply
		if jerr := json.Unmarshal(raw, &reply); jerr != nil {
			return "", fmt.Errorf("assistant reply: decode: %w", jerr)
		}
		return reply.Reply, nil
	}

	if a.apiKey == "" {
		return "", err
	}

	a.log.Warn("assistant function unreachable, using direct model", "error", err)
	return a.chatDirect(ctx, employeeID, history, prompt)
}

// chatDirect runs the conversation against Gemini with cache-backed tools.
func (a *Assistant) chatDirect(ctx context.Context, employeeID string, history []Message, prompt string) (string, error) {
	g := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: a.apiKey}),
		genkit.WithDefaultModel("googleai/gemini-2.5-flash"),
	)

	tools := defineTools(g, a.store, employeeID)

	messages := make([]*ai.Message, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case "assistant":
			messages = append(messages, ai.NewModelTextMessage(m.Content))
		default:
			messages = append(messages, ai.NewUserTextMessage(m.Content))
		}
	}

	resp, err := genkit.Generate(ctx, g,
		ai.WithSystem(systemPrompt),
		ai.WithMessages(messages...),
		ai.WithPrompt(prompt),
		ai.WithTools(tools...),
	)
	if err != nil {
		return "", fmt.Errorf("direct model chat: %w", err)
	}

	return resp.Text(), nil
}
