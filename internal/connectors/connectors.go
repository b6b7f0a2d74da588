package connectors

import "docucontrol/internal"

// MailConnector pulls raw return notifications from a mailbox.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
