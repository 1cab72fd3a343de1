package outreach

import (
	"context"
	"strings"

	"github.com/athletereach/outreach/pkg/async"
	"github.com/athletereach/outreach/pkg/placeholder"
)

// FallbackCoachName is bound to the coach tokens when a recipient has no
// coaches, so rendering never fails on an incomplete directory entry.
const FallbackCoachName = "Coach"

// Binder resolves a recipient into placeholder bindings and renders a
// template against them. Binding is pure: the same template and recipient
// always produce the same output.
type Binder struct{}

// NewBinder creates a Binder.
func NewBinder() *Binder {
	return &Binder{}
}

// Bind renders the template's subject and body for one recipient. Subject and
// body are substituted independently with the same bindings.
func (b *Binder) Bind(tpl Template, rcpt Recipient) RenderedEmail {
	bindings := b.bindings(rcpt)
	return RenderedEmail{
		SchoolID:   rcpt.SchoolID,
		SchoolName: rcpt.SchoolName,
		Recipients: rcpt.Addresses(),
		Subject:    placeholder.Render(tpl.Subject, bindings),
		Body:       placeholder.Render(tpl.Body, bindings),
	}
}

// RenderPreview renders the template for every recipient concurrently and
// returns the results in recipient order.
func (b *Binder) RenderPreview(ctx context.Context, tpl Template, rcpts []Recipient) ([]RenderedEmail, error) {
	futures := make([]*async.Future[RenderedEmail], len(rcpts))
	for i, rcpt := range rcpts {
		futures[i] = async.Async(ctx, rcpt, func(_ context.Context, r Recipient) (RenderedEmail, error) {
			return b.Bind(tpl, r), nil
		})
	}
	return async.WaitAll(futures...)
}

// bindings computes the token value map for one recipient.
//
// Multiple coaches at one school are joined with ", " for both the surname
// and full-name tokens; the first coach stays first so singular phrasing
// reads naturally.
func (b *Binder) bindings(rcpt Recipient) placeholder.Bindings {
	surnames := make([]string, 0, len(rcpt.Coaches))
	fullNames := make([]string, 0, len(rcpt.Coaches))
	for _, c := range rcpt.Coaches {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		fullNames = append(fullNames, name)
		surnames = append(surnames, surname(name))
	}

	lastName := strings.Join(surnames, ", ")
	allNames := strings.Join(fullNames, ", ")
	if lastName == "" {
		lastName = FallbackCoachName
	}
	if allNames == "" {
		allNames = FallbackCoachName
	}

	return placeholder.Bindings{
		placeholder.TokenSchoolName:          rcpt.SchoolName,
		placeholder.TokenCoachLastName:       lastName,
		placeholder.TokenCoachFullNames:      allNames,
		placeholder.TokenPersonalizedMessage: rcpt.PersonalizedMessage,
	}
}

// surname takes the last whitespace-separated field of a full name, so
// "Jane van Smith" yields "Smith" and a bare "Smith" passes through.
func surname(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
