package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/cuongbtq/recruitment-be/internal/notify"
	"github.com/cuongbtq/recruitment-be/shared/apperr"
	"github.com/cuongbtq/recruitment-be/shared/mailer"
	"github.com/cuongbtq/recruitment-be/shared/paystack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appFixture struct {
	clock     *fakeClock
	store     *memoryStore
	notifier  *fakeNotifier
	publisher *fakePublisher
	service   *ApplicationService
}

func newAppFixture(rankByActive bool) *appFixture {
	clock := newFakeClock(baseTime)
	f := &appFixture{
		clock:     clock,
		store:     newMemoryStore(clock),
		notifier:  &fakeNotifier{result: notify.Result{RecruiterSent: true, CandidateSent: true}},
		publisher: &fakePublisher{},
	}
	f.service = NewApplicationService(ApplicationServiceConfig{
		Store:             f.store,
		Notifier:          f.notifier,
		Publisher:         f.publisher,
		RankByActiveBoost: rankByActive,
		Clock:             clock.Now,
		Logger:            discardLogger(),
	})
	return f
}

func validSubmission() *SubmitInput {
	return &SubmitInput{
		JobID:           "job-1",
		JobTitle:        "Backend Engineer",
		FullName:        "Ada King Lovelace",
		Email:           "ada@example.com",
		AdditionalInfo:  "Available immediately",
		AgreedToPrivacy: true,
		CV:              []byte("%PDF-1.4"),
		CVMimeType:      domain.MimePDF,
	}
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		input     string
		wantFirst string
		wantLast  string
	}{
		{input: "Ada Lovelace", wantFirst: "Ada", wantLast: "Lovelace"},
		{input: "Ada King Lovelace", wantFirst: "Ada", wantLast: "King Lovelace"},
		{input: "Cher", wantFirst: "Cher", wantLast: "Cher"},
		{input: "  Ada   Lovelace ", wantFirst: "Ada", wantLast: "Lovelace"},
		{input: "", wantFirst: "", wantLast: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			first, last := SplitFullName(tt.input)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestSubmit(t *testing.T) {
	f := newAppFixture(false)

	result, err := f.service.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.NotEmpty(t, result.ApplicationID)
	assert.True(t, result.RecruiterEmailSent)
	assert.True(t, result.CandidateEmailSent)
	assert.Empty(t, result.EmailError)
	assert.False(t, result.EmailQueued)

	app := f.store.snapshot(result.ApplicationID)
	assert.Equal(t, "Ada", app.FirstName)
	assert.Equal(t, "King Lovelace", app.LastName)
	assert.Equal(t, domain.StatusPending, app.Status)
	assert.False(t, app.Boosted)
	assert.Nil(t, app.BoostExpiry)
	assert.Nil(t, app.Phone)
	require.NotNil(t, app.CoverLetter)
	assert.Equal(t, "Available immediately", *app.CoverLetter)

	require.Len(t, f.notifier.subs, 1)
	assert.Equal(t, result.ApplicationID, f.notifier.subs[0].ApplicationID)
	assert.Equal(t, "Ada King Lovelace", f.notifier.subs[0].FullName)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(in *SubmitInput)
		wantMessage string
	}{
		{name: "missing job id", mutate: func(in *SubmitInput) { in.JobID = "" }, wantMessage: "Missing required fields"},
		{name: "missing email", mutate: func(in *SubmitInput) { in.Email = "  " }, wantMessage: "Missing required fields"},
		{name: "no privacy consent", mutate: func(in *SubmitInput) { in.AgreedToPrivacy = false }, wantMessage: "Privacy policy consent is required"},
		{name: "no cv", mutate: func(in *SubmitInput) { in.CV = nil }, wantMessage: "CV is required"},
		{name: "cv too large", mutate: func(in *SubmitInput) { in.CV = bytes.Repeat([]byte("a"), domain.MaxCVSize+1) }, wantMessage: "File size exceeds 10MB limit"},
		{name: "image cv", mutate: func(in *SubmitInput) { in.CVMimeType = "image/png" }, wantMessage: "Only PDF and DOCX files are allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppFixture(false)
			in := validSubmission()
			tt.mutate(in)

			_, err := f.service.Submit(context.Background(), in)

			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
			assert.Equal(t, tt.wantMessage, apperr.MessageOf(err))
			assert.Empty(t, f.store.apps, "nothing may be written")
			assert.Empty(t, f.notifier.subs)
		})
	}
}

func TestSubmit_EmailOutcomes(t *testing.T) {
	smtpErr := errors.New("dial tcp: lookup smtp.zoho.com: no such host")

	tests := []struct {
		name       string
		result     notify.Result
		publishErr error
		wantError  string
		wantQueued bool
		wantTasks  int
		wantTo     []domain.EmailRecipient
	}{
		{
			name:       "recruiter email failed is queued",
			result:     notify.Result{CandidateSent: true, Err: smtpErr},
			wantError:  EmailFailedMessage,
			wantQueued: true,
			wantTasks:  1,
			wantTo:     []domain.EmailRecipient{domain.RecipientRecruiter},
		},
		{
			name:       "only candidate email failed",
			result:     notify.Result{RecruiterSent: true, Err: smtpErr},
			wantError:  EmailFailedMessage,
			wantQueued: true,
			wantTasks:  1,
			wantTo:     []domain.EmailRecipient{domain.RecipientCandidate},
		},
		{
			name:       "both emails failed",
			result:     notify.Result{Err: smtpErr},
			wantError:  EmailFailedMessage,
			wantQueued: true,
			wantTasks:  1,
			wantTo:     []domain.EmailRecipient{domain.RecipientRecruiter, domain.RecipientCandidate},
		},
		{
			name:   "email not configured",
			result: notify.Result{Err: mailer.ErrNotConfigured},
		},
		{
			name:       "queue unavailable",
			result:     notify.Result{Err: smtpErr},
			publishErr: errors.New("not connected to RabbitMQ"),
			wantError:  EmailFailedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppFixture(false)
			f.notifier.result = tt.result
			f.publisher.err = tt.publishErr

			result, err := f.service.Submit(context.Background(), validSubmission())

			require.NoError(t, err, "email failure never fails the submission")
			assert.Equal(t, tt.wantError, result.EmailError)
			assert.Equal(t, tt.wantQueued, result.EmailQueued)
			require.Len(t, f.publisher.tasks, tt.wantTasks)
			if tt.wantTasks > 0 {
				assert.Equal(t, domain.TaskApplicationEmail, f.publisher.tasks[0].Type)
				assert.Equal(t, result.ApplicationID, f.publisher.tasks[0].ApplicationID)
				assert.Equal(t, "Backend Engineer", f.publisher.tasks[0].JobTitle)
				assert.Equal(t, tt.wantTo, f.publisher.tasks[0].Recipients)
			}
			assert.Len(t, f.store.apps, 1)
		})
	}
}

func TestSubmit_StoreFailure(t *testing.T) {
	f := newAppFixture(false)
	f.store.createErr = errors.New("pool exhausted")

	_, err := f.service.Submit(context.Background(), validSubmission())

	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Empty(t, f.notifier.subs, "no email before the application is saved")
}

func TestResendSubmissionEmails(t *testing.T) {
	f := newAppFixture(false)
	result, err := f.service.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	require.NoError(t, f.service.ResendSubmissionEmails(context.Background(), result.ApplicationID, "Backend Engineer", nil))

	require.Len(t, f.notifier.subs, 2)
	resent := f.notifier.subs[1]
	assert.Equal(t, "Ada King Lovelace", resent.FullName)
	assert.Equal(t, []byte("%PDF-1.4"), resent.CVData)
	assert.Equal(t, "Available immediately", resent.AdditionalInfo)
	assert.Empty(t, resent.Recipients)

	candidateOnly := []domain.EmailRecipient{domain.RecipientCandidate}
	require.NoError(t, f.service.ResendSubmissionEmails(context.Background(), result.ApplicationID, "Backend Engineer", candidateOnly))

	require.Len(t, f.notifier.subs, 3)
	resent = f.notifier.subs[2]
	assert.Equal(t, candidateOnly, resent.Recipients)
	assert.Nil(t, resent.CVData, "the CV is only loaded for the recruiter email")

	err = f.service.ResendSubmissionEmails(context.Background(), "missing", "x", nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateStatus(t *testing.T) {
	f := newAppFixture(false)
	result, err := f.service.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	app, err := f.service.UpdateStatus(context.Background(), result.ApplicationID, "INTERVIEWED")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterviewed, app.Status)

	_, err = f.service.UpdateStatus(context.Background(), result.ApplicationID, "HIRED")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Invalid status value", apperr.MessageOf(err))

	_, err = f.service.UpdateStatus(context.Background(), "missing", "REJECTED")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestList_Pagination(t *testing.T) {
	f := newAppFixture(false)
	for i := 0; i < 5; i++ {
		_, err := f.service.Submit(context.Background(), validSubmission())
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	apps, page, err := f.service.List(context.Background(), ListInput{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, apps, 2)
	assert.Equal(t, Pagination{Page: 2, Limit: 2, Total: 5, TotalPages: 3}, page)

	_, _, err = f.service.List(context.Background(), ListInput{Page: 0, Limit: 2})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, err = f.service.List(context.Background(), ListInput{Page: 1, Limit: 0})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, err = f.service.List(context.Background(), ListInput{Page: 1, Limit: 10, Status: "nope"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDelete(t *testing.T) {
	f := newAppFixture(false)
	result, err := f.service.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), result.ApplicationID))
	assert.True(t, apperr.Is(f.service.Delete(context.Background(), result.ApplicationID), apperr.KindNotFound))
}

// Two applications for one job, the older one is boosted for 14 days through a
// signed charge.success, and the listing is read before and after expiry.
func TestBoostLifecycle(t *testing.T) {
	for _, rankByActive := range []bool{false, true} {
		name := "raw flag ranking"
		if rankByActive {
			name = "active boost ranking"
		}

		t.Run(name, func(t *testing.T) {
			f := newAppFixture(rankByActive)
			ctx := context.Background()

			a, err := f.service.Submit(ctx, validSubmission())
			require.NoError(t, err)
			f.clock.Advance(time.Second)
			b, err := f.service.Submit(ctx, validSubmission())
			require.NoError(t, err)

			provider := &fakeProvider{}
			checkout := newCheckoutService(provider, false)
			session, err := checkout.CreateCheckout(ctx, &CheckoutInput{
				ApplicationID: a.ApplicationID,
				Email:         "ada@example.com",
				FullName:      "Ada Lovelace",
				JobTitle:      "Backend Engineer",
				BoostTier:     "premium",
			})
			require.NoError(t, err)

			webhook := NewWebhookService(WebhookServiceConfig{
				Secret: testSecret,
				Store:  f.store,
				Logger: discardLogger(),
			})
			body := chargeBody("charge.success", a.ApplicationID, session.Reference, `"`+provider.requests[0].Metadata.BoostDays+`"`)
			outcome, err := webhook.Handle(ctx, body, paystack.Sign(testSecret, body), "127.0.0.1")
			require.NoError(t, err)
			require.Equal(t, OutcomeGranted, outcome)

			grantedAt := f.clock.Now()
			boosted := f.store.snapshot(a.ApplicationID)
			require.NotNil(t, boosted.BoostExpiry)
			assert.Equal(t, grantedAt.Add(14*24*time.Hour), *boosted.BoostExpiry)

			f.clock.Advance(time.Hour)
			apps, _, err := f.service.List(ctx, ListInput{JobID: "job-1", Page: 1, Limit: 100})
			require.NoError(t, err)
			require.Len(t, apps, 2)
			assert.Equal(t, a.ApplicationID, apps[0].ID, "boosted older application ranks first")
			assert.True(t, apps[0].BoostActive(f.clock.Now()))

			f.clock.Advance(15 * 24 * time.Hour)
			apps, _, err = f.service.List(ctx, ListInput{JobID: "job-1", Page: 1, Limit: 100})
			require.NoError(t, err)
			require.Len(t, apps, 2)
			for _, app := range apps {
				assert.False(t, app.BoostActive(f.clock.Now()))
			}

			if rankByActive {
				assert.Equal(t, []string{b.ApplicationID, a.ApplicationID}, []string{apps[0].ID, apps[1].ID})
			} else {
				assert.Equal(t, []string{a.ApplicationID, b.ApplicationID}, []string{apps[0].ID, apps[1].ID}, "raw flag keeps expired boosts on top")
				assert.True(t, apps[0].Boosted)
			}
		})
	}
}
