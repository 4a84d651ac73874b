// Package ses adapts SES to the notify.Transport interface.
package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsses "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// API is the subset of the SES client the transport uses.
type API interface {
	SendEmail(ctx context.Context, params *awsses.SendEmailInput, optFns ...func(*awsses.Options)) (*awsses.SendEmailOutput, error)
}

type Transport struct {
	api    API
	sender string
}

func New(api API, sender string) *Transport {
	return &Transport{api: api, sender: sender}
}

func (t *Transport) Send(ctx context.Context, recipient, subject, body string) error {
	_, err := t.api.SendEmail(ctx, &awsses.SendEmailInput{
		FromEmailAddress: aws.String(t.sender),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
