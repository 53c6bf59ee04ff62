package mailer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMailer_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{name: "user and password", config: Config{User: "u@example.com", Password: "p"}, expected: true},
		{name: "missing password", config: Config{User: "u@example.com"}, expected: false},
		{name: "missing user", config: Config{Password: "p"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(&tt.config, testLogger())
			assert.Equal(t, tt.expected, m.Enabled())
		})
	}
}

func TestMailer_SendNotConfigured(t *testing.T) {
	m := New(&Config{Host: "smtp.example.com", Port: 465}, testLogger())
	err := m.Send(context.Background(), &Message{To: "a@example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMailer_DialerTLSMode(t *testing.T) {
	assert.True(t, New(&Config{Host: "smtp.example.com", Port: 465}, testLogger()).dialer.SSL)
	assert.False(t, New(&Config{Host: "smtp.example.com", Port: 587}, testLogger()).dialer.SSL)
}

func TestMailer_Build(t *testing.T) {
	m := New(&Config{Host: "smtp.example.com", Port: 465, User: "jobs@example.com", Password: "p", FromName: "Careers"}, testLogger())

	gm := m.build(&Message{
		To:       "recruit@example.com",
		ReplyTo:  "ada@example.com",
		Subject:  "New application",
		HTMLBody: "<p>hello</p>",
		Attachments: []Attachment{
			{Filename: "CV_Ada.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
		},
	})

	assert.Equal(t, []string{"recruit@example.com"}, gm.GetHeader("To"))
	assert.Equal(t, []string{"ada@example.com"}, gm.GetHeader("Reply-To"))
	assert.Equal(t, []string{"New application"}, gm.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := gm.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Careers")
	assert.Contains(t, raw, "CV_Ada.pdf")
	assert.True(t, strings.Contains(raw, "application/pdf"))
}
