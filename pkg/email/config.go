package email

// Config holds the failure-notice mailer settings. The Postmark tokens are
// optional so development environments can fall back to the dev sender.
// SenderEmail establishes the notice sender identity; ReplyToEmail, when set,
// routes replies to a monitored inbox instead of the sender address.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"NOTICE_SENDER_EMAIL,required"`
	ReplyToEmail         string `env:"NOTICE_REPLY_TO_EMAIL"`
}
