package email

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender_FallsBackToLog(t *testing.T) {
	s := NewSender(SMTPConfig{Host: "smtp.example.com", Port: 587}, zerolog.Nop())
	_, ok := s.(*LogSender)
	assert.True(t, ok)

	s = NewSender(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "a@b.c"}, zerolog.Nop())
	_, ok = s.(*SMTPSender)
	assert.True(t, ok)
}

func TestLogSender_LogsWithoutRetainingMessages(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(zerolog.New(&buf))
	require.NoError(t, s.Send(context.Background(), "a@college.edu", "Hi", "<p>x</p>"))
	require.NoError(t, s.Send(context.Background(), "b@college.edu", "Hi", "<p>y</p>"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "a@college.edu", entry["to"])
	assert.Equal(t, "Hi", entry["subject"])
	assert.EqualValues(t, len("<p>x</p>"), entry["bodyBytes"])
	assert.NotContains(t, buf.String(), "<p>x</p>")
}

func TestSenders_RespectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, NewLogSender(zerolog.Nop()).Send(ctx, "a@b.c", "s", "b"), context.Canceled)
	smtp := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1}, zerolog.Nop())
	assert.ErrorIs(t, smtp.Send(ctx, "a@b.c", "s", "b"), context.Canceled)
}

func TestSMTPSender_UnreachableServer(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, Username: "u", Password: "p", From: "cell@college.edu"}, zerolog.Nop())
	err := s.Send(context.Background(), "a@college.edu", "Subject", "<p>body</p>")
	assert.Error(t, err)
}

func TestTemplates_EscapeContent(t *testing.T) {
	subject, body := MessageEmail("Drive on <Monday>\nBring resume")
	assert.Equal(t, "New message from the Placement Cell", subject)
	assert.Contains(t, body, "Drive on &lt;Monday&gt;<br>Bring resume")

	subject, body = JobEmail(JobPosting{Title: "SDE", Company: "A&B", Deadline: "2026-11-01"})
	assert.Equal(t, "New job opportunity: SDE at A&B", subject)
	assert.Contains(t, body, "A&amp;B")
	assert.Contains(t, body, "Apply before: 2026-11-01")
	assert.NotContains(t, body, "Location:")

	_, body = InvitationEmail("https://portal.example/register?token=a&b")
	assert.Contains(t, body, "token=a&amp;b")
	assert.Contains(t, body, "24 hours")
}
