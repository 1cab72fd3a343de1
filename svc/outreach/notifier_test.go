package outreach_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athletereach/outreach/pkg/email"
	"github.com/athletereach/outreach/pkg/rawemail"
	"github.com/athletereach/outreach/svc/dispatch"
	"github.com/athletereach/outreach/svc/outreach"
)

type stubSender struct {
	sent []email.SendEmailParams
	err  error
}

func (s *stubSender) SendEmail(_ context.Context, params email.SendEmailParams) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, params)
	return nil
}

func TestFailureMailer(t *testing.T) {
	t.Parallel()

	item := &dispatch.Item{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Subject: "Interest in State U <script>",
	}

	t.Run("emails the owner", func(t *testing.T) {
		t.Parallel()

		sender := &stubSender{}
		mailer := outreach.NewFailureMailer(sender,
			func(context.Context, uuid.UUID) (string, error) { return "athlete@example.com", nil }, nil)

		mailer.NotifyFailure(context.Background(), item, errors.New("mailbox unreachable"))

		require.Len(t, sender.sent, 1)
		got := sender.sent[0]
		assert.Equal(t, "athlete@example.com", got.SendTo)
		assert.Equal(t, "dispatch-failure", got.Tag)
		assert.Contains(t, got.BodyHTML, "mailbox unreachable")
		assert.Contains(t, got.BodyHTML, "&lt;script&gt;", "subject is HTML-escaped")
	})

	t.Run("lookup failure is swallowed", func(t *testing.T) {
		t.Parallel()

		sender := &stubSender{}
		mailer := outreach.NewFailureMailer(sender,
			func(context.Context, uuid.UUID) (string, error) { return "", errors.New("unknown user") }, nil)

		mailer.NotifyFailure(context.Background(), item, errors.New("boom"))
		assert.Empty(t, sender.sent)
	})

	t.Run("send failure is swallowed", func(t *testing.T) {
		t.Parallel()

		mailer := outreach.NewFailureMailer(&stubSender{err: errors.New("postmark down")},
			func(context.Context, uuid.UUID) (string, error) { return "a@b.c", nil }, nil)

		// Must not panic or propagate.
		mailer.NotifyFailure(context.Background(), item, errors.New("boom"))
	})
}

// End-to-end: a failed queue item triggers the owner notification and a
// successful one lands in the coach email records.
func TestDispatchIntegration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := dispatch.NewMemoryRepository()
	enq, err := dispatch.NewEnqueuer(repo)
	require.NoError(t, err)

	records := outreach.NewRecords(outreach.NewMemoryRecordRepository())
	sender := &stubSender{}
	mailer := outreach.NewFailureMailer(sender,
		func(context.Context, uuid.UUID) (string, error) { return "athlete@example.com", nil }, nil)

	client := &flakyClient{failFirst: true}
	w, err := dispatch.NewWorker(repo, client,
		dispatch.WithContactRecorder(records),
		dispatch.WithFailureNotifier(mailer),
	)
	require.NoError(t, err)

	owner := uuid.New()
	school := uuid.New()
	for i := 0; i < 2; i++ {
		_, err := enq.Enqueue(ctx, dispatch.EnqueueParams{
			OwnerID:    owner,
			SchoolID:   school,
			Recipients: []string{"coach@stateu.edu"},
			Subject:    "Recruiting inquiry",
			Content:    "<p>Hello</p>",
		})
		require.NoError(t, err)
	}

	// First drain fails, second succeeds.
	first, err := w.DrainOne(ctx)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusFailed, first.Status)
	require.Len(t, sender.sent, 1, "owner is notified about the failure")

	second, err := w.DrainOne(ctx)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusSent, second.Status)

	contacted, err := records.AlreadyContacted(ctx, owner, school, "coach@stateu.edu")
	require.NoError(t, err)
	assert.True(t, contacted, "successful delivery lands in the records")
}

type flakyClient struct {
	failFirst bool
	calls     int
}

func (c *flakyClient) Deliver(_ context.Context, _ rawemail.TransportMessage) (string, error) {
	c.calls++
	if c.failFirst && c.calls == 1 {
		return "", errors.New("mailbox unreachable")
	}
	return "gm-ok", nil
}
