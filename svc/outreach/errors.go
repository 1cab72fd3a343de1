package outreach

import "errors"

var (
	// ErrTemplateNotFound is returned when a template id does not exist or
	// belongs to another user.
	ErrTemplateNotFound = errors.New("outreach.errors.template_not_found")

	// ErrAnonymousOwner is returned when an operation is attempted without an
	// authenticated owner.
	ErrAnonymousOwner = errors.New("outreach.errors.anonymous_owner")

	// ErrEmptyTitle is returned when a template is created without a title.
	ErrEmptyTitle = errors.New("outreach.errors.empty_title")

	// ErrEmptyBody is returned when a template is created without a body.
	ErrEmptyBody = errors.New("outreach.errors.empty_body")

	// ErrNoRecipients is returned when a send or preview is attempted with an
	// empty recipient list.
	ErrNoRecipients = errors.New("outreach.errors.no_recipients")

	// ErrRecordNotFound is returned when no coach email record exists for the
	// (owner, school) pair.
	ErrRecordNotFound = errors.New("outreach.errors.record_not_found")

	// ErrPersonalizerUnavailable is returned when AI personalization is
	// requested but no personalizer is configured.
	ErrPersonalizerUnavailable = errors.New("outreach.errors.personalizer_unavailable")

	// ErrPersonalizationFailed wraps upstream AI provider failures.
	ErrPersonalizationFailed = errors.New("outreach.errors.personalization_failed")

	// ErrDeliveryUnavailable is returned when SendNow is called on a service
	// built without a delivery client.
	ErrDeliveryUnavailable = errors.New("outreach.errors.delivery_unavailable")
)
