// Package placeholder implements literal token substitution for outreach
// email templates.
//
// Templates are free text authored by athletes and may contain bracketed
// tokens such as [schoolName] or [coachLastName]. Render replaces every
// occurrence of each recognized token with a per-recipient value; tokens with
// no bound value are replaced with the empty string so no marker ever leaks
// into an outgoing email.
//
// The package is pure: no I/O, no side effects, and Render is idempotent.
// This makes it safe to call on every keystroke of a debounced template
// editor as well as inside the dispatch pipeline.
//
// Usage:
//
//	out := placeholder.Render(tpl.Body, placeholder.Bindings{
//	    placeholder.TokenSchoolName:    "State U",
//	    placeholder.TokenCoachLastName: "Smith",
//	})
//
// CheckRequired reports which required tokens a body is missing. The check is
// advisory only: the product warns but lets the user send anyway.
package placeholder
