package emailclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/domain"
)

// sesAPI is the slice of *sesv2.Client we use.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESClient sends through AWS SES v2.
type SESClient struct {
	api    sesAPI
	sender domain.SubscriberEmail
}

// NewSESClient loads AWS config for cfg.Region. Static keys are used when
// both are set; otherwise the default credential chain applies.
func NewSESClient(ctx context.Context, cfg config.EmailClientConfig, sender domain.SubscriberEmail) (*SESClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SESClient{
		api: sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
			if cfg.BaseURL != "" {
				o.BaseEndpoint = aws.String(cfg.BaseURL)
			}
		}),
		sender: sender,
	}, nil
}

// Send delivers one message through SES.
func (c *SESClient) Send(ctx context.Context, recipient domain.SubscriberEmail, subject, htmlContent, textContent string) error {
	_, err := c.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.sender.String()),
		Destination: &types.Destination{
			ToAddresses: []string{recipient.String()},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlContent), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(textContent), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}
