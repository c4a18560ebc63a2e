package constant

const (
	PaymentStateNotRequired = "NOT_REQUIRED"
	PaymentStatePending     = "PENDING"
	PaymentStateVerified    = "VERIFIED"
	PaymentStateFailed      = "FAILED"
)

const (
	AttendanceStateIssued   = "ISSUED"
	AttendanceStateAttended = "ATTENDED"
)

const (
	CheckInErrAlreadyUsed = "ALREADY_USED"
	CheckInErrNotFound    = "NOT_FOUND"
)

const (
	RoleRegistrant = "registrant"
	RoleScanner    = "scanner"
	RoleAdmin      = "admin"
)

// TicketIdPrefix is prepended to registration ids in emails and on printed tickets.
const TicketIdPrefix = "SA-"
