package rawemail

import "errors"

var (
	ErrCompose           = errors.New("rawemail.errors.composition_failed")
	ErrNoRecipients      = errors.New("rawemail.errors.no_recipients")
	ErrEmptySubject      = errors.New("rawemail.errors.empty_subject")
	ErrInvalidAttachment = errors.New("rawemail.errors.invalid_attachment")
)
