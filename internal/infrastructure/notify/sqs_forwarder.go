// Package notify forwards payment lifecycle events to external queues.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/event"
)

const defaultSendTimeout = 5 * time.Second

// SQSAPI is the subset of *sqs.Client the forwarder uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type SQSConfig struct {
	QueueURL  string
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the service endpoint, e.g. for LocalStack.
	Endpoint string
}

// NewSQSClient loads the default AWS credential chain unless static keys are
// configured.
func NewSQSClient(ctx context.Context, cfg SQSConfig) (*sqs.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// SQSForwarder sends every event it handles to one queue as a JSON message.
type SQSForwarder struct {
	Client   SQSAPI
	QueueURL string
	Timeout  time.Duration
}

type message struct {
	ID         string     `json:"id"`
	Type       event.Type `json:"type"`
	OccurredAt time.Time  `json:"occurred_at"`
	Payload    any        `json:"payload"`
}

func (f *SQSForwarder) Handle(evt event.Event) error {
	if f.QueueURL == "" {
		return errors.New("sqs forwarder: queue url not set")
	}

	body, err := json.Marshal(message{
		ID:         evt.ID,
		Type:       evt.Type,
		OccurredAt: evt.OccurredAt,
		Payload:    evt.Payload,
	})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", evt.ID, err)
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err = f.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(f.QueueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(evt.Type)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send event %s to sqs: %w", evt.ID, err)
	}
	return nil
}
