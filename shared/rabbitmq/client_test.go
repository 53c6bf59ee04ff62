package rabbitmq

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		name     string
		base     time.Duration
		mult     float64
		attempt  int
		expected time.Duration
	}{
		{name: "first retry uses base", base: 100 * time.Millisecond, mult: 2, attempt: 0, expected: 100 * time.Millisecond},
		{name: "second retry doubles", base: 100 * time.Millisecond, mult: 2, attempt: 1, expected: 200 * time.Millisecond},
		{name: "third retry quadruples", base: 100 * time.Millisecond, mult: 2, attempt: 2, expected: 400 * time.Millisecond},
		{name: "custom multiplier", base: time.Second, mult: 3, attempt: 2, expected: 9 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, backoff(tt.base, tt.mult, tt.attempt))
		})
	}
}

func TestConfig_URI(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "default credentials and vhost",
			config: Config{Host: "localhost", Port: 5672, User: "guest", Password: "guest"},
		},
		{
			name:   "password with reserved characters",
			config: Config{Host: "mq", Port: 5673, User: "app", Password: "p@ss/word", VHost: "/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := amqp.ParseURI(tt.config.URI())
			require.NoError(t, err)

			assert.Equal(t, tt.config.Host, parsed.Host)
			assert.Equal(t, tt.config.Port, parsed.Port)
			assert.Equal(t, tt.config.User, parsed.Username)
			assert.Equal(t, tt.config.Password, parsed.Password)
			assert.Equal(t, "/", parsed.Vhost)
		})
	}
}

func TestConfig_QueueArgs(t *testing.T) {
	assert.Nil(t, (&Config{QueueName: "recruitment_tasks"}).queueArgs())

	args := (&Config{QueueName: "recruitment_tasks", DeadLetterQueue: "recruitment_tasks.dead"}).queueArgs()
	assert.Equal(t, "", args["x-dead-letter-exchange"])
	assert.Equal(t, "recruitment_tasks.dead", args["x-dead-letter-routing-key"])
}

func TestClient_NotConnected(t *testing.T) {
	c := &Client{config: &Config{}, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := c.PublishJSON(context.Background(), map[string]string{"type": "boost_grant"})
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.ErrorIs(t, c.SetQos(1), ErrNotConnected)
	assert.ErrorIs(t, c.Ack(1), ErrNotConnected)
	assert.ErrorIs(t, c.Nack(1, false), ErrNotConnected)

	_, err = c.Consume("tag")
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.False(t, c.IsConnected())
	assert.NoError(t, c.Close())
}

func TestSleep(t *testing.T) {
	assert.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}
