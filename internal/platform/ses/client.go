package ses

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/yungbote/unibridge-backend/internal/platform/envutil"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type Config struct {
	Region    string
	FromEmail string
}

func ConfigFromEnv() Config {
	return Config{
		Region:    envutil.String("AWS_REGION", "us-east-1"),
		FromEmail: envutil.String("SES_FROM_EMAIL", envutil.String("MAIL_FROM_EMAIL", "")),
	}
}

// sendEmailAPI is the slice of *ses.Client used here.
type sendEmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Client struct {
	log  *logger.Logger
	api  sendEmailAPI
	from string
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("missing SES_FROM_EMAIL")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newWithAPI(log, ses.NewFromConfig(awsCfg), cfg), nil
}

func newWithAPI(log *logger.Logger, api sendEmailAPI, cfg Config) *Client {
	return &Client{
		log:  log.With("client", "SESClient"),
		api:  api,
		from: strings.TrimSpace(cfg.FromEmail),
	}
}

// Send delivers msg and returns the SES message id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if strings.TrimSpace(msg.To) == "" {
		return "", fmt.Errorf("ses: recipient required")
	}
	body := &types.Body{}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}
	if body.Text == nil && body.Html == nil {
		return "", fmt.Errorf("ses: Text or HTML content required")
	}
	out, err := c.api.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
		Source: aws.String(c.from),
	})
	if err != nil {
		return "", fmt.Errorf("ses send: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
