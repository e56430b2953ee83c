package models

// DigestRequest asks the notifier to push a metrics digest. An empty To falls
// back to the configured default recipient.
type DigestRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}
