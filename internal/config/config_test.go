package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8000", cfg.HTTPAddress)
	require.Empty(t, cfg.SeedPath)
	require.False(t, cfg.EnforceCapacity)
	require.Equal(t, "*", cfg.CORSAllowedOrigin)
	require.Equal(t, "roster_events", cfg.EventsTopic)
	require.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	require.Equal(t, 25, cfg.OutboxBatchSize)
	require.Equal(t, 1000, cfg.OutboxMaxPending)
	require.Equal(t, 30*time.Second, cfg.DLQPollInterval)
	require.Equal(t, 5, cfg.DLQMaxRetries)
	require.Equal(t, time.Minute, cfg.DLQBaseDelay)
	require.Equal(t, "roster-audit", cfg.ConsumerGroupID)
	require.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	require.False(t, cfg.EventsEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9000")
	t.Setenv("ROSTER_ENFORCE_CAPACITY", "true")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.HTTPAddress)
	require.True(t, cfg.EnforceCapacity)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.EventsEnabled())
	require.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "lots")

	_, err := Load()
	require.ErrorContains(t, err, "parse env:")
}

func TestValidate(t *testing.T) {
	base := Config{
		OutboxBatchSize:    1,
		OutboxMaxPending:   1,
		OutboxPollInterval: time.Second,
		DLQPollInterval:    time.Second,
		LogFormat:          "text",
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.OutboxBatchSize = 0
	require.ErrorContains(t, bad.Validate(), "OUTBOX_BATCH_SIZE")

	bad = base
	bad.OutboxMaxPending = -1
	require.ErrorContains(t, bad.Validate(), "OUTBOX_MAX_PENDING")

	bad = base
	bad.DLQMaxRetries = -1
	require.ErrorContains(t, bad.Validate(), "DLQ_MAX_RETRIES")

	bad = base
	bad.DLQPollInterval = 0
	require.ErrorContains(t, bad.Validate(), "poll intervals")

	bad = base
	bad.LogFormat = "xml"
	require.ErrorContains(t, bad.Validate(), "LOG_FORMAT")
}
