package client

import (
	"context"
	"event-ticket/common/ticket"
	"event-ticket/model"
	"fmt"
	"os"
	"path/filepath"
)

// Materializer saves tickets on the registrant's device.
type Materializer struct {
	RegistrantName string
	QRSize         int
}

// Export renders the ticket and writes it to dir/ticket-{id}.png, returning the path.
// Registrations without a ticket yield ticket.ErrTicketUnavailable; a *RenderError means the
// ticket exists but could not be saved here.
func (m Materializer) Export(ctx context.Context, reg model.Registration, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &RenderError{RegistrationId: reg.Id, Err: err}
	}

	size := m.QRSize
	if size == 0 {
		size = ticket.DefaultQRSize
	}

	view := ticket.ViewOf(reg, m.RegistrantName)
	if err := view.Available(); err != nil {
		return "", fmt.Errorf("export %s: %w", reg.Id, err)
	}

	png, err := ticket.Render(view, size)
	if err != nil {
		return "", &RenderError{RegistrationId: reg.Id, Err: err}
	}

	path := filepath.Join(dir, fmt.Sprintf("ticket-%s.png", reg.Id))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", &RenderError{RegistrationId: reg.Id, Err: err}
	}

	return path, nil
}
