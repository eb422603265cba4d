// Package confirm renders booking confirmations: a human-readable message and
// a base64-encoded PNG QR code of the reservation summary.
package confirm

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"

	"desk-reservation-backend/internal/parse"
)

// Confirmation is returned to the caller of a successful booking.
type Confirmation struct {
	Message string `json:"message"`
	QRCode  string `json:"qr_code"`
}

// Generator encodes reservation summaries as QR images.
type Generator struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewGenerator creates a generator producing square PNGs of size pixels.
func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = 128
	}
	return &Generator{size: size, level: qrcode.Medium}
}

// Confirm builds the confirmation for a reservation that has been stored.
func (g *Generator) Confirm(deskID int64, username string, start, end time.Time) (Confirmation, error) {
	png, err := qrcode.Encode(Summary(deskID, username, start, end), g.level, g.size)
	if err != nil {
		return Confirmation{Message: Message(deskID, start, end)}, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return Confirmation{
		Message: Message(deskID, start, end),
		QRCode:  base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Message is the success text shown to the user.
func Message(deskID int64, start, end time.Time) string {
	return fmt.Sprintf("Desk %d has been reserved from %s to %s.",
		deskID, start.Format(parse.SummaryLayout), end.Format(parse.SummaryLayout))
}

// Summary is the text encoded in the QR image.
func Summary(deskID int64, username string, start, end time.Time) string {
	return fmt.Sprintf("Desk reservation: %d, User: %s, Start: %s, End: %s",
		deskID, username, start.Format(parse.SummaryLayout), end.Format(parse.SummaryLayout))
}
