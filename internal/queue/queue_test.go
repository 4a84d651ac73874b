package queue_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/queue"
)

func TestFileMessage_RoundTrip(t *testing.T) {
	msg := queue.FileMessage{
		FileID:        uuid.New(),
		ObjectKey:     "uploads/2019/cnab.txt",
		FileName:      "cnab.txt",
		UploadedAt:    time.Date(2019, 3, 1, 10, 0, 0, 0, time.UTC),
		CorrelationID: uuid.NewString(),
	}

	body, err := msg.Encode()
	require.NoError(t, err)

	got, err := queue.DecodeFileMessage(body)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestDecodeFileMessage_Poison(t *testing.T) {
	type testCase struct {
		name string
		body string
	}

	tests := []testCase{
		{name: "Garbage", body: "not json"},
		{name: "Empty", body: ""},
		{name: "MissingFileID", body: `{"fileName":"cnab.txt"}`},
		{name: "NullFileID", body: `{"fileId":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := queue.DecodeFileMessage(tt.body)
			assert.ErrorIs(t, err, queue.ErrPoisonMessage)
		})
	}
}
