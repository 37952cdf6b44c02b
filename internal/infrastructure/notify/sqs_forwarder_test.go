package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/event"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/notify"
)

type fakeSQS struct {
	sent   []*sqs.SendMessageInput
	sendFn func() error
}

func (f *fakeSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	if f.sendFn != nil {
		if err := f.sendFn(); err != nil {
			return nil, err
		}
	}
	f.sent = append(f.sent, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSForwarder_ShouldSendEventAsJSON(t *testing.T) {
	client := &fakeSQS{}
	f := &notify.SQSForwarder{Client: client, QueueURL: "https://sqs.local/q"}

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	err := f.Handle(event.Event{
		ID:         "evt-1",
		Type:       event.PaymentCompleted,
		OccurredAt: at,
		Payload:    event.PaymentPayload{OrderID: "O1", Status: "COMPLETED"},
	})
	require.NoError(t, err)
	require.Len(t, client.sent, 1)

	in := client.sent[0]
	require.Equal(t, "https://sqs.local/q", aws.ToString(in.QueueUrl))
	require.Equal(t, "PAYMENT_COMPLETED", aws.ToString(in.MessageAttributes["event_type"].StringValue))

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &body))
	require.Equal(t, "evt-1", body["id"])
	require.Equal(t, "PAYMENT_COMPLETED", body["type"])
	payload := body["payload"].(map[string]any)
	require.Equal(t, "O1", payload["order_id"])
}

func TestSQSForwarder_ShouldWrapSendErrors(t *testing.T) {
	boom := errors.New("throttled")
	f := &notify.SQSForwarder{
		Client:   &fakeSQS{sendFn: func() error { return boom }},
		QueueURL: "https://sqs.local/q",
	}

	err := f.Handle(event.Event{ID: "evt-2", Type: event.PaymentCreated})
	require.ErrorIs(t, err, boom)
}

func TestSQSForwarder_ShouldRequireQueueURL(t *testing.T) {
	f := &notify.SQSForwarder{Client: &fakeSQS{}}
	require.Error(t, f.Handle(event.Event{Type: event.PaymentCreated}))
}
