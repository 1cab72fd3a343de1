package outreach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/athletereach/outreach/pkg/delivery"
	"github.com/athletereach/outreach/pkg/limits"
	"github.com/athletereach/outreach/pkg/rawemail"
	"github.com/athletereach/outreach/svc/dispatch"
)

// Service orchestrates the outreach flow: template CRUD behind the template
// quota, preview rendering, and the two send paths (queued batch and
// immediate).
//
// Quota discipline is consume-after-effect: CanConsume gates the operation up
// front, Consume runs only after the effect succeeded. A crash between the
// two under-counts, which is the accepted direction; users are never charged
// for work that did not happen.
type Service struct {
	binder       *Binder
	templates    TemplateRepository
	records      *Records
	limiter      limits.Service
	enqueuer     *dispatch.Enqueuer
	client       delivery.Client
	policy       rawemail.AddressPolicy
	personalizer Personalizer
	logger       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDeliveryClient enables the immediate SendNow path.
func WithDeliveryClient(client delivery.Client, policy rawemail.AddressPolicy) ServiceOption {
	return func(s *Service) {
		s.client = client
		s.policy = policy
	}
}

// WithPersonalizer enables AI personalization, gated by the ai_calls quota.
func WithPersonalizer(p Personalizer) ServiceOption {
	return func(s *Service) {
		s.personalizer = p
	}
}

// WithServiceLogger sets the service logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the outreach service.
func NewService(
	templates TemplateRepository,
	records *Records,
	limiter limits.Service,
	enqueuer *dispatch.Enqueuer,
	opts ...ServiceOption,
) (*Service, error) {
	if templates == nil {
		return nil, fmt.Errorf("template repository is required")
	}
	if records == nil {
		return nil, fmt.Errorf("record service is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("usage limiter is required")
	}
	if enqueuer == nil {
		return nil, fmt.Errorf("enqueuer is required")
	}

	s := &Service{
		binder:    NewBinder(),
		templates: templates,
		records:   records,
		limiter:   limiter,
		enqueuer:  enqueuer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateTemplate persists a new template, gated by the template quota.
func (s *Service) CreateTemplate(ctx context.Context, params CreateTemplateParams) (*Template, error) {
	if params.OwnerID == uuid.Nil {
		return nil, ErrAnonymousOwner
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(params.Body) == "" {
		return nil, ErrEmptyBody
	}

	if err := s.limiter.CanConsume(ctx, params.OwnerID, limits.ResourceTemplates, 1); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tpl := &Template{
		ID:             uuid.New(),
		OwnerID:        params.OwnerID,
		Title:          params.Title,
		Subject:        params.Subject,
		Body:           params.Body,
		RequiredTokens: params.RequiredTokens,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.templates.CreateTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	s.consume(ctx, params.OwnerID, limits.Deltas{limits.ResourceTemplates: 1})
	return tpl, nil
}

// GetTemplate loads one of the user's templates.
func (s *Service) GetTemplate(ctx context.Context, ownerID, id uuid.UUID) (*Template, error) {
	return s.templates.GetTemplate(ctx, ownerID, id)
}

// ListTemplates returns the user's templates, most recently updated first.
func (s *Service) ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]*Template, error) {
	return s.templates.ListTemplates(ctx, ownerID)
}

// UpdateTemplate applies an edit. The UI autosaves, so this is called with
// the latest committed version of the whole template.
func (s *Service) UpdateTemplate(ctx context.Context, ownerID, id uuid.UUID, params UpdateTemplateParams) (*Template, error) {
	tpl, err := s.templates.GetTemplate(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrEmptyTitle
	}

	tpl.Title = params.Title
	tpl.Subject = params.Subject
	tpl.Body = params.Body
	tpl.RequiredTokens = params.RequiredTokens
	tpl.UpdatedAt = time.Now().UTC()

	if err := s.templates.UpdateTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return tpl, nil
}

// DeleteTemplate removes a template. The template counter is a per-period
// creation allowance, so deleting does not refund a slot.
func (s *Service) DeleteTemplate(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.templates.DeleteTemplate(ctx, ownerID, id)
}

// Preview renders the template for every recipient without consuming quota
// or touching the queue.
func (s *Service) Preview(ctx context.Context, ownerID, templateID uuid.UUID, rcpts []Recipient) ([]RenderedEmail, error) {
	if len(rcpts) == 0 {
		return nil, ErrNoRecipients
	}
	tpl, err := s.templates.GetTemplate(ctx, ownerID, templateID)
	if err != nil {
		return nil, err
	}
	return s.binder.RenderPreview(ctx, *tpl, rcpts)
}

// EnqueueBatch renders one email per recipient and queues them for delivery.
// Attachment blob keys apply to every item in the batch; the worker resolves
// them into payloads at drain time.
//
// The whole batch is gated up front: if the schools_sent quota cannot cover
// every recipient, nothing is rendered or queued. Per-recipient enqueue
// failures do not block the rest; quota is consumed only for the items that
// were actually queued.
func (s *Service) EnqueueBatch(ctx context.Context, ownerID, templateID uuid.UUID, rcpts []Recipient, attachments []string) ([]*dispatch.Item, error) {
	if ownerID == uuid.Nil {
		return nil, ErrAnonymousOwner
	}
	if len(rcpts) == 0 {
		return nil, ErrNoRecipients
	}

	tpl, err := s.templates.GetTemplate(ctx, ownerID, templateID)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.CanConsume(ctx, ownerID, limits.ResourceSchoolsSent, int64(len(rcpts))); err != nil {
		return nil, err
	}

	rendered, err := s.binder.RenderPreview(ctx, *tpl, rcpts)
	if err != nil {
		return nil, fmt.Errorf("failed to render batch: %w", err)
	}

	batch := make([]dispatch.EnqueueParams, len(rendered))
	for i, email := range rendered {
		batch[i] = dispatch.EnqueueParams{
			OwnerID:     ownerID,
			SchoolID:    email.SchoolID,
			Recipients:  email.Recipients,
			Subject:     email.Subject,
			Content:     email.Body,
			Attachments: attachments,
		}
	}

	items, batchErr := s.enqueuer.EnqueueBatch(ctx, batch)
	if len(items) > 0 {
		s.consume(ctx, ownerID, limits.Deltas{limits.ResourceSchoolsSent: int64(len(items))})
	}
	return items, batchErr
}

// SendNow renders and delivers a single email synchronously, bypassing the
// queue. On success the coach email record is upserted and one schools_sent
// unit is consumed. Delivery errors surface to the caller directly since
// there is no queue item to carry them.
func (s *Service) SendNow(ctx context.Context, ownerID, templateID uuid.UUID, rcpt Recipient) (string, error) {
	if s.client == nil {
		return "", ErrDeliveryUnavailable
	}
	if ownerID == uuid.Nil {
		return "", ErrAnonymousOwner
	}
	addresses := rcpt.Addresses()
	if len(addresses) == 0 {
		return "", ErrNoRecipients
	}

	tpl, err := s.templates.GetTemplate(ctx, ownerID, templateID)
	if err != nil {
		return "", err
	}

	if err := s.limiter.CanConsume(ctx, ownerID, limits.ResourceSchoolsSent, 1); err != nil {
		return "", err
	}

	email := s.binder.Bind(*tpl, rcpt)
	msg, err := rawemail.Compose(rawemail.Email{
		To:       email.Recipients,
		Subject:  email.Subject,
		HTMLBody: email.Body,
	}, nil, s.policy)
	if err != nil {
		return "", err
	}

	providerID, err := s.client.Deliver(ctx, msg)
	if err != nil {
		return "", err
	}

	if err := s.records.RecordContact(ctx, ownerID, rcpt.SchoolID, addresses); err != nil {
		s.logger.Warn("failed to record contacted coaches",
			slog.String("school_id", rcpt.SchoolID.String()),
			slog.String("error", err.Error()))
	}
	s.consume(ctx, ownerID, limits.Deltas{limits.ResourceSchoolsSent: 1})
	return providerID, nil
}

// Personalize drafts the personalized-message paragraph for one school,
// gated by the ai_calls quota.
func (s *Service) Personalize(ctx context.Context, ownerID uuid.UUID, req PersonalizeRequest) (string, error) {
	if s.personalizer == nil {
		return "", ErrPersonalizerUnavailable
	}
	if ownerID == uuid.Nil {
		return "", ErrAnonymousOwner
	}

	if err := s.limiter.CanConsume(ctx, ownerID, limits.ResourceAICalls, 1); err != nil {
		return "", err
	}

	message, err := s.personalizer.Personalize(ctx, req)
	if err != nil {
		return "", err
	}

	s.consume(ctx, ownerID, limits.Deltas{limits.ResourceAICalls: 1})
	return message, nil
}

// Usage returns the user's current usage against every plan limit.
func (s *Service) Usage(ctx context.Context, ownerID uuid.UUID) (map[limits.Resource]limits.UsageInfo, error) {
	return s.limiter.GetAllUsage(ctx, ownerID)
}

// AlreadyContacted reports whether the user has previously emailed the
// address at the school.
func (s *Service) AlreadyContacted(ctx context.Context, ownerID, schoolID uuid.UUID, address string) (bool, error) {
	return s.records.AlreadyContacted(ctx, ownerID, schoolID, address)
}

// ContactedAddresses returns every address the user has on record for the
// school, normalized and sorted.
func (s *Service) ContactedAddresses(ctx context.Context, ownerID, schoolID uuid.UUID) ([]string, error) {
	return s.records.ContactedAddresses(ctx, ownerID, schoolID)
}

// consume records usage after a successful effect. Failures are logged, not
// returned: the work already happened and must not be undone or double
// charged by a retry.
func (s *Service) consume(ctx context.Context, ownerID uuid.UUID, deltas limits.Deltas) {
	if err := s.limiter.Consume(ctx, ownerID, deltas); err != nil {
		s.logger.Error("failed to consume usage",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
	}
}
