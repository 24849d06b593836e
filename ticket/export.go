package ticket

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"go.lepak.sg/metro-planner/model"
)

const sheetName = "Tickets"

var exportHeader = []interface{}{
	"Booking ID", "Ticket IDs", "Type", "From", "To", "Count", "Stops",
	"Fare", "Validity (min)", "Booked At", "Status", "Cancelled At", "Booked By",
}

// Export writes tickets as an xlsx workbook with one row per booking.
func Export(w io.Writer, tickets []model.Ticket) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", exportHeader); err != nil {
		return err
	}

	for i, t := range tickets {
		cancelled := ""
		if t.CancelledAt != nil {
			cancelled = t.CancelledAt.Format(time.DateTime)
		}
		row := []interface{}{
			t.BookingID, strings.Join(t.TicketIDs, ", "), string(t.Type), t.From, t.To,
			t.Count, t.Stops, t.Fare, t.ValidityMinutes, t.BookedAt.Format(time.DateTime),
			string(t.Status), cancelled, t.BookedBy,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
