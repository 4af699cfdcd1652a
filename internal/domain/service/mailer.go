package service

import (
	"context"
)

// MailMessage is a rendered email ready for delivery.
type MailMessage struct {
	RequestID string `json:"request_id,omitempty"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
	// Link is embedded as a QR image by transports that support inline images.
	Link    string `json:"link,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

// Mailer delivers messages to an address. It is the notification sender.
type Mailer interface {
	// Send delivers or enqueues the message. Failure aborts the calling operation.
	Send(ctx context.Context, msg *MailMessage) error

	// Close releases any resources held by the mailer
	Close() error
}
