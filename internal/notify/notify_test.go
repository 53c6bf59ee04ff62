package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/cuongbtq/recruitment-be/shared/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu      sync.Mutex
	enabled bool
	failTo  map[string]error
	sent    []*mailer.Message
}

func (f *fakeSender) Send(ctx context.Context, msg *mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		return errors.New("send without deadline")
	}
	if err := f.failTo[msg.To]; err != nil {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) Enabled() bool { return f.enabled }

func testNotifier(sender Sender) *Notifier {
	return New(sender, Config{
		RecruitEmail: "recruit@example.com",
		CompanyName:  "Example Tech Ltd",
		SendTimeout:  time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testSubmission() *Submission {
	return &Submission{
		ApplicationID:  "app-1",
		JobID:          "job-1",
		JobTitle:       "Backend Engineer",
		FullName:       "Ada Lovelace",
		Email:          "ada@example.com",
		LinkedinURL:    "https://linkedin.com/in/ada",
		AdditionalInfo: "<script>alert(1)</script>",
		CVData:         []byte("%PDF-1.4"),
		CVMimeType:     domain.MimePDF,
		SubmittedAt:    time.Date(2026, 2, 3, 9, 15, 0, 0, time.UTC),
	}
}

func TestNotifier_NotifySubmission(t *testing.T) {
	sender := &fakeSender{enabled: true}
	n := testNotifier(sender)

	result := n.NotifySubmission(context.Background(), testSubmission())

	require.NoError(t, result.Err)
	assert.True(t, result.RecruiterSent)
	assert.True(t, result.CandidateSent)
	require.Len(t, sender.sent, 2)

	recruiter := sender.sent[0]
	assert.Equal(t, "recruit@example.com", recruiter.To)
	assert.Equal(t, "ada@example.com", recruiter.ReplyTo)
	assert.Equal(t, "Application - Backend Engineer - Ada Lovelace", recruiter.Subject)
	require.Len(t, recruiter.Attachments, 1)
	assert.Equal(t, "CV_Ada_Lovelace_Backend_Engineer.pdf", recruiter.Attachments[0].Filename)
	assert.Contains(t, recruiter.HTMLBody, "https://linkedin.com/in/ada")
	assert.Contains(t, recruiter.HTMLBody, "Tuesday, 3 February 2026 at 09:15 UTC")
	assert.NotContains(t, recruiter.HTMLBody, "<script>")
	assert.NotContains(t, recruiter.HTMLBody, "Portfolio:")

	candidate := sender.sent[1]
	assert.Equal(t, "ada@example.com", candidate.To)
	assert.Equal(t, "Application Received - Backend Engineer at Example Tech Ltd", candidate.Subject)
	assert.Empty(t, candidate.Attachments)
	assert.Contains(t, candidate.HTMLBody, "Dear Ada Lovelace")
}

func TestNotifier_RecruiterFailureStillSendsCandidate(t *testing.T) {
	sender := &fakeSender{
		enabled: true,
		failTo:  map[string]error{"recruit@example.com": errors.New("dial tcp: lookup smtp: no such host")},
	}
	n := testNotifier(sender)

	result := n.NotifySubmission(context.Background(), testSubmission())

	require.Error(t, result.Err)
	assert.False(t, result.RecruiterSent)
	assert.True(t, result.CandidateSent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ada@example.com", sender.sent[0].To)
}

func TestNotifier_Recipients(t *testing.T) {
	tests := []struct {
		name          string
		recipients    []domain.EmailRecipient
		wantTo        []string
		wantRecruiter bool
		wantCandidate bool
	}{
		{
			name:          "empty selection sends both",
			wantTo:        []string{"recruit@example.com", "ada@example.com"},
			wantRecruiter: true,
			wantCandidate: true,
		},
		{
			name:          "recruiter only",
			recipients:    []domain.EmailRecipient{domain.RecipientRecruiter},
			wantTo:        []string{"recruit@example.com"},
			wantRecruiter: true,
		},
		{
			name:          "candidate only",
			recipients:    []domain.EmailRecipient{domain.RecipientCandidate},
			wantTo:        []string{"ada@example.com"},
			wantCandidate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{enabled: true}
			sub := testSubmission()
			sub.Recipients = tt.recipients

			result := testNotifier(sender).NotifySubmission(context.Background(), sub)

			require.NoError(t, result.Err)
			assert.Equal(t, tt.wantRecruiter, result.RecruiterSent)
			assert.Equal(t, tt.wantCandidate, result.CandidateSent)
			var to []string
			for _, msg := range sender.sent {
				to = append(to, msg.To)
			}
			assert.Equal(t, tt.wantTo, to)
		})
	}
}

func TestNotifier_Disabled(t *testing.T) {
	sender := &fakeSender{enabled: false}
	n := testNotifier(sender)

	result := n.NotifySubmission(context.Background(), testSubmission())

	assert.ErrorIs(t, result.Err, mailer.ErrNotConfigured)
	assert.False(t, result.RecruiterSent)
	assert.False(t, result.CandidateSent)
	assert.Empty(t, sender.sent)
}

func TestCVAttachmentName(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		jobTitle string
		mimeType string
		expected string
	}{
		{name: "pdf", fullName: "Ada Lovelace", jobTitle: "Engineer", mimeType: domain.MimePDF, expected: "CV_Ada_Lovelace_Engineer.pdf"},
		{name: "docx with punctuation", fullName: "Jean-Luc O'Neil", jobTitle: "Sr. Dev (Go)", mimeType: domain.MimeDocx, expected: "CV_Jean_Luc_O_Neil_Sr__Dev__Go_.docx"},
		{name: "doc", fullName: "Bo", jobTitle: "QA", mimeType: domain.MimeDoc, expected: "CV_Bo_QA.doc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CVAttachmentName(tt.fullName, tt.jobTitle, tt.mimeType))
		})
	}
}
