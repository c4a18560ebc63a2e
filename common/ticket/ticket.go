// Package ticket materializes an issued ticket into a downloadable PNG.
package ticket

import (
	"bytes"
	"encoding/base64"
	"errors"
	"event-ticket/common/constant"
	"event-ticket/model"
	"fmt"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"time"
)

var (
	ErrTicketUnavailable = errors.New("ticket is not available for this registration")
	ErrInvalidSize       = errors.New("invalid dimensions: size must be positive")
)

const (
	DefaultQRSize   = 320
	lineHeight      = 18
	padding         = 16
	tokenVisibleLen = 8
	dateLayout      = "Mon, 02 Jan 2006 15:04 MST"
)

// QRCodeEncoder matches qrcode.Encode so tests can swap the encoder.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// View is everything printed on a ticket.
type View struct {
	RegistrationId string
	Token          string
	PaymentState   string
	EventTitle     string
	StartsAt       time.Time
	Venue          string
	RegistrantName string
}

// ViewOf builds a View from a registration carrying eventDetails.
func ViewOf(reg model.Registration, registrantName string) View {
	v := View{
		RegistrationId: reg.Id,
		PaymentState:   reg.PaymentState,
		RegistrantName: registrantName,
	}
	if reg.Ticket != nil {
		v.Token = reg.Ticket.Token
	}
	if reg.EventDetails != nil {
		v.EventTitle = reg.EventDetails.Title
		v.StartsAt = reg.EventDetails.StartsAt
		v.Venue = reg.EventDetails.Venue
	}
	return v
}

// Available reports ErrTicketUnavailable unless the payment state allows a ticket and a token exists.
func (v View) Available() error {
	if !model.TicketValid(v.PaymentState) || v.Token == "" {
		return fmt.Errorf("%w: payment state %s", ErrTicketUnavailable, v.PaymentState)
	}
	return nil
}

// Render returns the PNG bytes of the ticket. Identical views produce identical bytes.
func Render(v View, qrSize int) ([]byte, error) {
	if err := v.Available(); err != nil {
		return nil, err
	}
	if qrSize <= 0 {
		return nil, ErrInvalidSize
	}

	qr, err := qrcode.New(v.Token, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	qr.DisableBorder = false
	qrImg := qr.Image(qrSize)
	// the encoder never goes below one pixel per module, so small sizes come back larger
	qrSize = qrImg.Bounds().Dx()

	lines := v.lines()
	width := qrSize + 2*padding
	height := qrSize + 2*padding + len(lines)*lineHeight + padding

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(padding, padding, padding+qrSize, padding+qrSize), qrImg, qrImg.Bounds().Min, draw.Src)

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}

	maxChars := (width - 2*padding) / basicfont.Face7x13.Advance
	y := padding + qrSize + lineHeight
	for _, line := range lines {
		drawer.Dot = fixed.P(padding, y)
		drawer.DrawString(clip(line, maxChars))
		y += lineHeight
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buf.Bytes(), nil
}

func (v View) lines() []string {
	lines := []string{
		v.EventTitle,
		v.StartsAt.Format(dateLayout),
		v.Venue,
		v.RegistrantName,
		fmt.Sprintf("%s%s  #%s", constant.TicketIdPrefix, v.RegistrationId, TruncateToken(v.Token)),
	}

	for i, line := range lines {
		lines[i] = asciiOnly(line)
	}
	return lines
}

// TruncateToken keeps the first characters of a token for human display.
func TruncateToken(token string) string {
	if len(token) <= tokenVisibleLen {
		return token
	}
	return token[:tokenVisibleLen] + "..."
}

// QRDataURL encodes the token as a data URL PNG suitable for an <img> tag.
func QRDataURL(token string, size int, encoder QRCodeEncoder) (string, error) {
	if size <= 0 {
		return "", ErrInvalidSize
	}

	data, err := encoder(token, qrcode.Medium, size)
	if err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func clip(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// asciiOnly replaces glyphs missing from the bitmap face.
func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '?'
		}
		return r
	}, s)
}
