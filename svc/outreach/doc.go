// Package outreach is the product core: templates with placeholder tokens,
// per-recipient binding, and the two send paths.
//
// A Template is free text whose tokens ([schoolName], [coachLastName],
// [coachFullNames], [personalizedMessage]) are substituted per Recipient by
// the Binder. The Service wires the rest: template CRUD behind the template
// quota, concurrent preview rendering, batch enqueue into svc/dispatch gated
// by the schools_sent quota, an immediate SendNow path, AI personalization
// behind the ai_calls quota, and the coach email records that power
// "already contacted" hints.
//
// Quota discipline everywhere is check-then-act, consume-after-effect:
// a denied check stops the operation before any state changes, and usage is
// only recorded once the effect actually happened.
package outreach
