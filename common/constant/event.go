package constant

const (
	QueueStreamName = "event_ticket_queue_stream"
)

const (
	AllWildcard          = "events.>"
	RegistrationWildcard = "events.registration.>"
	EmailWildcard        = "events.email.>"

	SubjectRegistrationConfirmed = "events.registration.confirmed"
	SubjectRegistrationCheckedIn = "events.registration.checked_in"
	SubjectSendEmail             = "events.email.send"
)
