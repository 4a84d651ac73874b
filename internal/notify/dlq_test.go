package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/metrics"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/notify"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/queue"
)

func deadLetterBody(t *testing.T) string {
	t.Helper()

	body, err := json.Marshal(notify.DeadLetter{
		NotificationID: uuid.New(),
		FileID:         uuid.New(),
		Type:           notify.TypeCompleted,
		RecipientEmail: recipient,
		AttemptCount:   notify.MaxAttempts,
		LastAttemptAt:  time.Now().UTC(),
		ErrorMessage:   "ses unavailable",
	})
	require.NoError(t, err)

	return string(body)
}

func newDLQWorker(t *testing.T) (*notify.DLQWorker, *notify.MockTransport, *queue.MockClient) {
	t.Helper()

	ctrl := gomock.NewController(t)
	transport := notify.NewMockTransport(ctrl)
	dlq := queue.NewMockClient(ctrl)

	ch := notify.NewChannel(transport, dlq, recipient, metrics.NoOp{})
	ch.Sleep = func(context.Context, time.Duration) error { return nil }

	return notify.NewDLQWorker(ch, dlq, time.Minute, 10, metrics.NoOp{}), transport, dlq
}

func TestDLQWorker_Drain_ReplaysAndSettles(t *testing.T) {
	w, transport, dlq := newDLQWorker(t)

	dlq.EXPECT().Receive(gomock.Any(), int32(10)).Return([]queue.Delivery{
		{MessageID: "m1", ReceiptHandle: "rh1", Body: deadLetterBody(t)},
	}, nil)
	transport.EXPECT().Send(gomock.Any(), recipient, gomock.Any(), gomock.Any()).Return(nil)
	dlq.EXPECT().Delete(gomock.Any(), "rh1").Return(nil)

	w.Drain(context.Background())
}

func TestDLQWorker_Drain_FailedReplayStillSettles(t *testing.T) {
	w, transport, dlq := newDLQWorker(t)

	dlq.EXPECT().Receive(gomock.Any(), int32(10)).Return([]queue.Delivery{
		{MessageID: "m1", ReceiptHandle: "rh1", Body: deadLetterBody(t)},
	}, nil)
	transport.EXPECT().
		Send(gomock.Any(), recipient, gomock.Any(), gomock.Any()).
		Return(errors.New("still down")).
		Times(notify.MaxAttempts)
	// Deleted despite the failure; no Send back onto the queue.
	dlq.EXPECT().Delete(gomock.Any(), "rh1").Return(nil)

	w.Drain(context.Background())
}

func TestDLQWorker_Drain_SettlesPoison(t *testing.T) {
	w, _, dlq := newDLQWorker(t)

	dlq.EXPECT().Receive(gomock.Any(), int32(10)).Return([]queue.Delivery{
		{MessageID: "m1", ReceiptHandle: "rh1", Body: "not json"},
	}, nil)
	dlq.EXPECT().Delete(gomock.Any(), "rh1").Return(nil)

	w.Drain(context.Background())
}

func TestDLQWorker_Drain_ReceiveFailure(t *testing.T) {
	w, _, dlq := newDLQWorker(t)

	dlq.EXPECT().Receive(gomock.Any(), int32(10)).Return(nil, errors.New("sqs unavailable"))

	w.Drain(context.Background())
}

func TestDLQWorker_Run_StopsOnCancel(t *testing.T) {
	w, _, _ := newDLQWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
