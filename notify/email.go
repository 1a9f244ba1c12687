package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"harborview.com/shiftman/model"
)

// Email sends escalations through SES to the duty-manager mailbox.
type Email struct {
	client *ses.Client
	from   string
	to     string
}

func NewEmail(ctx context.Context, from, to string) (*Email, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Email{
		client: ses.NewFromConfig(cfg),
		from:   from,
		to:     to,
	}, nil
}

func (e *Email) Notify(ctx context.Context, n model.Notification) error {
	_, err := e.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(e.from),
		Destination: &types.Destination{
			ToAddresses: []string{e.to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(n.Title)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(n.Body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	return nil
}
