package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatermillEventPublisher_PublishesEnvelope(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "quiz-runs")
	require.NoError(t, err)

	publisher := NewWatermillEventPublisher(pubSub, "quiz-runs", discardLogger())
	event := NewQuizGeneratedEvent(QuizGeneratedEvent{RunID: "run-1", URL: "https://example.com", MCQCount: 3})
	require.NoError(t, publisher.PublishRunEvent(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, "quiz.generated", msg.Metadata.Get("event_type"))
		assert.Equal(t, "quiz-generator", msg.Metadata.Get("source"))
		assert.Equal(t, "https://example.com", msg.Metadata.Get(MetadataPartitionKey))

		key, err := partitionKey("quiz-runs", msg)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", key)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		data := decoded["data"].(map[string]interface{})
		assert.Equal(t, "run-1", data["run_id"])
		assert.Equal(t, float64(3), data["mcq_count"])
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(discardLogger())

	require.NoError(t, mock.PublishRunEvent(context.Background(), NewQuizFailedEvent(QuizFailedEvent{RunID: "r", Error: "boom"})))
	events := mock.GetPublishedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventQuizFailed, events[0].Type)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, "", events[0].Key)

	require.NoError(t, mock.PublishRunEvent(context.Background(), NewTripPlannedEvent(TripPlannedEvent{PreferredRegion: "europe"})))
	events = mock.GetPublishedEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "europe", events[1].Key)
}

func TestPartitionKey_FallsBackToMessageID(t *testing.T) {
	key, err := partitionKey("quiz-runs", message.NewMessage("evt-1", nil))
	require.NoError(t, err)
	assert.Equal(t, "evt-1", key)
}
