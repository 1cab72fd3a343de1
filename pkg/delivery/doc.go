// Package delivery abstracts the external mailbox provider that transmits
// outreach emails.
//
// The Client interface accepts a composed rawemail.TransportMessage and
// returns the provider's message id. Two implementations are provided:
//
//   - GmailClient posts {raw, threadId} to the provider's raw-message
//     ingestion endpoint, authenticating through an oauth2.TokenSource. Token
//     acquisition and refresh stay inside the oauth2 library.
//   - DevSender writes the decoded message to disk for local development.
//
// Delivery failures wrap ErrDelivery and preserve the provider's own error
// message so the dispatch queue can record it on the failed item.
package delivery
