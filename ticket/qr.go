package ticket

import (
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"

	"go.lepak.sg/metro-planner/model"
	"go.lepak.sg/metro-planner/store"
)

const qrSize = 256

// QRContent is the text encoded in the QR code of one passenger ticket.
func QRContent(t model.Ticket, ticketID string) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d|%s",
		ticketID, t.BookingID, t.Type, t.From, t.To, t.Stops, t.ValidUntil().Format(time.RFC3339))
}

// QR renders a PNG QR code for ticketID, which must belong to t. An empty
// ticketID selects the first ticket of the booking.
func QR(t model.Ticket, ticketID string) ([]byte, error) {
	if len(t.TicketIDs) == 0 {
		return nil, store.ErrNotFound
	}
	if ticketID == "" {
		ticketID = t.TicketIDs[0]
	}

	found := false
	for _, id := range t.TicketIDs {
		if id == ticketID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: ticket %s", store.ErrNotFound, ticketID)
	}

	return qrcode.Encode(QRContent(t, ticketID), qrcode.Medium, qrSize)
}
