package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/slack-go/slack"

	"harborview.com/shiftman/model"
)

type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

func ConnectSlack() *Slack {
	token := os.Getenv("SLACK_BOT_TOKEN")
	infoCh := os.Getenv("SLACK_INFO_CHANNEL")
	errorCh := os.Getenv("SLACK_ERROR_CHANNEL")

	return NewSlack(token, SlackOption{InfoChannelID: infoCh, ErrorChannelID: errorCh})
}

func NewSlack(token string, options SlackOption) *Slack {
	client := slack.New(token)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

// Notify posts escalations to the info channel; error-kind notifications go
// to the error channel.
func (s *Slack) Notify(ctx context.Context, n model.Notification) error {
	message := n.Title
	if n.Body != "" {
		message += "\n" + n.Body
	}
	if n.Kind == "error" && s.options.ErrorChannelID != "" {
		return s.postMessage(s.options.ErrorChannelID, message)
	}
	return s.postMessage(s.options.InfoChannelID, message)
}
