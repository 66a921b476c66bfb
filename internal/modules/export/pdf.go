// README: PDF report: summary boxes, participants and seat assignments.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/phpdave11/gofpdf"
)

const (
	pageWidth = 190.0
	rowHeight = 7.0
)

// WritePDF renders r as an A4 report and copies it to w.
func WritePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Office Trip Carpooling Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Office Trip Carpooling Report", "", 1, "C", false, 0, "")
	if !r.GeneratedAt.IsZero() {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, "Generated "+r.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	heading(pdf, "Summary")
	summaryBoxes(pdf, []box{
		{strconv.Itoa(r.Summary.TotalPeople), "Total People"},
		{strconv.Itoa(r.Summary.TotalCars), "Vehicles"},
		{strconv.Itoa(r.Summary.TotalSeats), "Total Seats"},
		{strconv.Itoa(r.Summary.UnassignedPassengers), "Unassigned"},
	})

	heading(pdf, "Users & Vehicles")
	rows := make([][]string, 0, len(r.Participants))
	for _, p := range r.Participants {
		vehicleType, seats := "-", "-"
		if p.Vehicle != nil {
			vehicleType = p.Vehicle.VehicleType
			seats = strconv.Itoa(p.Vehicle.TotalSeats)
		}
		rows = append(rows, []string{dash(p.User.Name), string(p.User.Email), dash(string(p.User.Role)), vehicleType, seats})
	}
	table(pdf, []string{"Name", "Email", "Role", "Vehicle", "Seats"}, []float64{40, 65, 25, 40, 20}, rows)

	heading(pdf, "Seat Assignments")
	rows = rows[:0]
	for _, a := range r.Assignments {
		rows = append(rows, []string{a.PassengerName, a.DriverName, strconv.Itoa(a.Request.SeatsRequested), string(a.Request.Status)})
	}
	table(pdf, []string{"Passenger", "Driver", "Seats", "Status"}, []float64{65, 65, 25, 35}, rows)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

type box struct {
	value string
	label string
}

func heading(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(79, 70, 229)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}

func summaryBoxes(pdf *gofpdf.Fpdf, boxes []box) {
	width := pageWidth / float64(len(boxes))
	x, y := pdf.GetX(), pdf.GetY()
	pdf.SetFillColor(248, 250, 252)
	for i, b := range boxes {
		pdf.SetXY(x+float64(i)*width, y)
		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetTextColor(99, 102, 241)
		pdf.CellFormat(width-2, 10, b.value, "", 2, "C", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(100, 116, 139)
		pdf.CellFormat(width-2, 6, b.label, "", 0, "C", true, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x, y+18)
}

func table(pdf *gofpdf.Fpdf, header []string, widths []float64, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(99, 102, 241)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range header {
		pdf.CellFormat(widths[i], rowHeight, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(248, 250, 252)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for n, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], rowHeight, tr(cell), "1", 0, "L", n%2 == 1, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, rowHeight, "none", "1", 1, "C", false, 0, "")
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
