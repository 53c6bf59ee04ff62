package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"regexp"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/cuongbtq/recruitment-be/shared/logger"
	"github.com/cuongbtq/recruitment-be/shared/mailer"
)

// Sender delivers one email
type Sender interface {
	Send(ctx context.Context, msg *mailer.Message) error
	Enabled() bool
}

// Config holds notifier settings
type Config struct {
	RecruitEmail string
	CompanyName  string
	SendTimeout  time.Duration
}

// Submission is everything the submission emails render
type Submission struct {
	ApplicationID  string
	JobID          string
	JobTitle       string
	FullName       string
	Email          string
	Phone          string
	Location       string
	LinkedinURL    string
	PortfolioURL   string
	AdditionalInfo string
	WantBoost      bool
	CVData         []byte
	CVMimeType     string
	SubmittedAt    time.Time

	// Recipients limits which emails are sent; empty sends both
	Recipients []domain.EmailRecipient
}

// Result reports which emails went out
type Result struct {
	RecruiterSent bool
	CandidateSent bool
	Err           error
}

// Notifier sends the recruiter notification and the candidate confirmation
type Notifier struct {
	sender Sender
	config Config
	logger *slog.Logger
}

// New creates a notifier
func New(sender Sender, config Config, logger *slog.Logger) *Notifier {
	if config.SendTimeout <= 0 {
		config.SendTimeout = 10 * time.Second
	}
	return &Notifier{
		sender: sender,
		config: config,
		logger: logger,
	}
}

// NotifySubmission sends the selected emails, each bounded by the send timeout.
// The candidate email is still attempted when the recruiter email fails.
func (n *Notifier) NotifySubmission(ctx context.Context, sub *Submission) Result {
	if !n.sender.Enabled() {
		n.logger.Warn("Email not configured, skipping submission emails",
			slog.String("application_id", sub.ApplicationID),
		)
		return Result{Err: mailer.ErrNotConfigured}
	}

	var result Result

	if domain.IncludesRecipient(sub.Recipients, domain.RecipientRecruiter) {
		if err := n.sendRecruiter(ctx, sub); err != nil {
			result.Err = err
		} else {
			result.RecruiterSent = true
		}
	}

	if domain.IncludesRecipient(sub.Recipients, domain.RecipientCandidate) {
		if err := n.sendCandidate(ctx, sub); err != nil {
			if result.Err == nil {
				result.Err = err
			}
		} else {
			result.CandidateSent = true
		}
	}

	if result.Err != nil {
		n.logger.Error("Submission email failed",
			slog.String("application_id", sub.ApplicationID),
			logger.Email("candidate", sub.Email),
			slog.Bool("recruiter_sent", result.RecruiterSent),
			slog.Bool("candidate_sent", result.CandidateSent),
			slog.Any("error", result.Err),
		)
	}

	return result
}

func (n *Notifier) sendRecruiter(ctx context.Context, sub *Submission) error {
	body, err := render(recruiterTemplate, n.view(sub))
	if err != nil {
		return err
	}

	msg := &mailer.Message{
		To:       n.config.RecruitEmail,
		ReplyTo:  sub.Email,
		Subject:  fmt.Sprintf("Application - %s - %s", sub.JobTitle, sub.FullName),
		HTMLBody: body,
	}
	if len(sub.CVData) > 0 {
		msg.Attachments = []mailer.Attachment{{
			Filename:    CVAttachmentName(sub.FullName, sub.JobTitle, sub.CVMimeType),
			ContentType: sub.CVMimeType,
			Data:        sub.CVData,
		}}
	}

	ctx, cancel := context.WithTimeout(ctx, n.config.SendTimeout)
	defer cancel()

	return n.sender.Send(ctx, msg)
}

func (n *Notifier) sendCandidate(ctx context.Context, sub *Submission) error {
	body, err := render(candidateTemplate, n.view(sub))
	if err != nil {
		return err
	}

	msg := &mailer.Message{
		To:       sub.Email,
		Subject:  fmt.Sprintf("Application Received - %s at %s", sub.JobTitle, n.config.CompanyName),
		HTMLBody: body,
	}

	ctx, cancel := context.WithTimeout(ctx, n.config.SendTimeout)
	defer cancel()

	return n.sender.Send(ctx, msg)
}

type view struct {
	*Submission
	HasCV        bool
	CompanyName  string
	RecruitEmail string
	SubmittedAt  string
}

func (n *Notifier) view(sub *Submission) view {
	submitted := sub.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}
	return view{
		Submission:   sub,
		HasCV:        len(sub.CVData) > 0,
		CompanyName:  n.config.CompanyName,
		RecruitEmail: n.config.RecruitEmail,
		SubmittedAt:  submitted.UTC().Format("Monday, 2 January 2006 at 15:04 MST"),
	}
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// CVAttachmentName builds CV_<name>_<title>.<ext> with every non-alphanumeric replaced by '_'
func CVAttachmentName(fullName, jobTitle, mimeType string) string {
	return fmt.Sprintf("CV_%s_%s.%s",
		unsafeFilenameChars.ReplaceAllString(fullName, "_"),
		unsafeFilenameChars.ReplaceAllString(jobTitle, "_"),
		domain.CVExtension(mimeType),
	)
}
