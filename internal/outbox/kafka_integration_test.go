//go:build integration

package outbox

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"

	"example.com/roster/internal/events"
)

func TestDispatcherPublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	kafkaC, err := kafkaContainer.Run(ctx, "confluentinc/confluent-local:7.5.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kafkaC.Terminate(context.Background()) })

	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	const topic = "roster_events"
	conn, err := kafka.Dial("tcp", brokers[0])
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))

	dead := NewDeadLetters(10, time.Second)
	queue := NewQueue(topic, 10, dead)
	producer := NewKafkaProducer(ProducerConfig{Brokers: brokers})
	defer producer.Close()
	logger, _ := logtest.NewNullLogger()
	dispatcher := NewDispatcher(queue, producer, StaticRegistry{ID: 1}, dead, DispatcherConfig{}, logger)

	require.NoError(t, queue.PublishSignedUp(ctx, events.ParticipantSignedUp{
		EventID:          "evt-kafka",
		Activity:         "Chess Club",
		Participant:      "new@x.edu",
		ParticipantCount: 3,
		MaxParticipants:  12,
		OccurredAt:       time.Now().UTC(),
	}))
	require.NoError(t, dispatcher.drain(ctx))
	require.Empty(t, dead.Entries())

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	require.Equal(t, "Chess Club", string(msg.Key))
	require.Equal(t, uint32(1), binary.BigEndian.Uint32(msg.Value[1:5]))

	var payload events.ParticipantSignedUp
	require.NoError(t, json.Unmarshal(msg.Value[5:], &payload))
	require.Equal(t, "evt-kafka", payload.EventID)
}
