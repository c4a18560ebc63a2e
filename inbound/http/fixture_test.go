package http

import (
	"event-ticket/common/auth"
	"event-ticket/common/constant"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/skip2/go-qrcode"
	"net/http"
	"time"
)

var (
	fixedNow = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	eventAt  = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	registrantIdentity = auth.Identity{RegistrantId: "user-1", Email: "asha@example.com", Name: "Asha", Role: constant.RoleRegistrant}
	scannerIdentity    = auth.Identity{RegistrantId: "scanner-1", Name: "Gate A", Role: constant.RoleScanner}

	eventColumns = []string{
		"id", "title", "category", "venue", "starts_at", "is_team_event", "team_size_min", "team_size_max",
		"requires_payment", "payment_amount", "currency", "registration_opens_at", "registration_closes_at", "registration_limit",
	}
	registrantColumns = []string{"id", "display_name", "email", "phone", "institution", "department", "year", "updated_at"}
	registrationColumns = []string{
		"id", "event_id", "registrant_id", "roster", "institution", "department", "year",
		"payment_state", "attendance_state", "ticket_token", "order_id", "created_at", "attended_at",
	}
	paymentOrderColumns = []string{
		"id", "event_id", "registrant_id", "roster", "institution", "department", "year", "amount", "currency",
		"status", "payment_id", "signature", "registration_id", "expired_at", "created_at", "updated_at",
	}
)

type eventFixture struct {
	id              int64
	team            bool
	min, max        int32
	requiresPayment bool
	amount          int64
	limit           *int32
	closesAt        *time.Time
}

func ts(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func int32Ptr(v int32) *int32 { return &v }

func eventRows(f eventFixture) *pgxmock.Rows {
	limit := pgtype.Int4{}
	if f.limit != nil {
		limit = pgtype.Int4{Int32: *f.limit, Valid: true}
	}

	closes := pgtype.Timestamptz{}
	if f.closesAt != nil {
		closes = ts(*f.closesAt)
	}

	currency := "INR"
	return pgxmock.NewRows(eventColumns).AddRow(
		f.id, "Hack Night", "technical", "Main Hall", ts(eventAt), f.team, f.min, f.max,
		f.requiresPayment, f.amount, currency, pgtype.Timestamptz{}, closes, limit,
	)
}

func registrantRows(institution string) *pgxmock.Rows {
	return pgxmock.NewRows(registrantColumns).AddRow(
		"user-1", "Asha", "asha@example.com", "", institution, "CSE", "3", ts(fixedNow),
	)
}

func registrationRows(id, paymentState, attendance, token string, roster []byte) *pgxmock.Rows {
	return pgxmock.NewRows(registrationColumns).AddRow(
		id, int64(7), "user-1", roster, "NIT", "CSE", "3",
		paymentState, attendance, token, pgtype.Text{}, ts(fixedNow), pgtype.Timestamptz{},
	)
}

func withIdentity(r *http.Request, id auth.Identity) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), id))
}

// stubQR keeps response bodies small and stable.
func stubQR(content string, _ qrcode.RecoveryLevel, _ int) ([]byte, error) {
	return []byte("qr:" + content), nil
}

// sqlName matches the sqlc header of a generated query.
func sqlName(name string) string {
	return "-- name: " + name + " "
}
