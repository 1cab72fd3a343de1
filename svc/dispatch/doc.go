// Package dispatch implements the outbound email queue.
//
// Rendered emails enter the queue as pending items via the Enqueuer and are
// drained one at a time by Workers. A worker claims the oldest pending item
// with an atomic pending->sending flip, composes the wire-format message,
// hands it to a delivery client, and finalizes the item as sent or failed.
// Terminal states are final: there is no automatic retry, and re-sending a
// failed item is done by enqueueing a fresh copy with Requeue.
//
// Two Repository implementations are provided. PgRepository backs production
// on PostgreSQL, using FOR UPDATE SKIP LOCKED to let many workers drain the
// same queue safely. MemoryRepository serves tests and local runs with the
// same compare-and-set semantics under a mutex.
//
// Usage:
//
//	repo := dispatch.NewMemoryRepository()
//	enq, _ := dispatch.NewEnqueuer(repo)
//
//	item, _ := enq.Enqueue(ctx, dispatch.EnqueueParams{
//		OwnerID:    userID,
//		SchoolID:   schoolID,
//		Recipients: []string{"coach@example.edu"},
//		Subject:    "Recruiting inquiry",
//		Content:    renderedHTML,
//	})
//
//	w, _ := dispatch.NewWorker(repo, client,
//		dispatch.WithAddressPolicy(policy),
//		dispatch.WithContactRecorder(records),
//	)
//	_, _ = w.DrainOne(ctx) // or w.Start(ctx) for the background loop
package dispatch
