package report

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/misd-it/misdesk/internal/domain"
)

const (
	pageWidth  = 210.0
	bandHeight = 25.0
)

// headerGreen is the band and accent color.
var headerGreen = rgb{22, 101, 52}

type rgb struct{ r, g, b int }

// statusColor maps a status label to its badge color.
func statusColor(status string) rgb {
	switch strings.ToLower(status) {
	case "open":
		return hexToRGB("#FEF08A")
	case "in progress":
		return hexToRGB("#BFDBFE")
	case "closed":
		return hexToRGB("#BBF7D0")
	case "on hold":
		return hexToRGB("#FECACA")
	default:
		return hexToRGB("#E5E7EB")
	}
}

// priorityColor maps a priority label to its badge color.
func priorityColor(priority string) rgb {
	switch strings.ToLower(priority) {
	case "low":
		return hexToRGB("#BBF7D0")
	case "medium":
		return hexToRGB("#FEF08A")
	case "high":
		return hexToRGB("#FCA5A5")
	case "critical":
		return hexToRGB("#EF4444")
	default:
		return hexToRGB("#E5E7EB")
	}
}

func hexToRGB(hex string) rgb {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	return rgb{r, g, b}
}

// Render projects one ticket into the fixed-layout PDF document. Pure
// read; the caller fetches the joined view.
func Render(view *domain.TicketView) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AliasNbPages("")
	pdf.SetAutoPageBreak(true, 25)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(100, 100, 100)
		footer := fmt.Sprintf("Generated on %s - Page %d of {nb}",
			time.Now().Format("1/2/2006, 3:04:05 PM"), pdf.PageNo())
		pdf.CellFormat(0, 10, footer, "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// Header band
	pdf.SetFillColor(headerGreen.r, headerGreen.g, headerGreen.b)
	pdf.Rect(0, 0, pageWidth, bandHeight, "F")
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(0, 9)
	pdf.CellFormat(pageWidth, 12, "TICKET DETAILS", "", 0, "C", false, 0, "")

	// Ticket frame
	pdf.SetDrawColor(headerGreen.r, headerGreen.g, headerGreen.b)
	pdf.SetLineWidth(0.5)
	pdf.RoundedRect(14, 35, 182, 30, 3, "1234", "D")
	pdf.SetTextColor(headerGreen.r, headerGreen.g, headerGreen.b)
	pdf.SetFontSize(14)
	pdf.Text(20, 45, fmt.Sprintf("Ticket #%d", view.ID))

	// Status and priority badges
	sc := statusColor(string(view.Status))
	pdf.SetFillColor(sc.r, sc.g, sc.b)
	pdf.RoundedRect(105, 39, 40, 10, 2, "1234", "F")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFontSize(10)
	pdf.SetXY(105, 41)
	pdf.CellFormat(40, 6, strings.ToUpper(string(view.Status)), "", 0, "C", false, 0, "")

	pc := priorityColor(string(view.Priority))
	pdf.SetFillColor(pc.r, pc.g, pc.b)
	pdf.RoundedRect(150, 39, 40, 10, 2, "1234", "F")
	pdf.SetXY(150, 41)
	pdf.CellFormat(40, 6, "PRIORITY: "+strings.ToUpper(string(view.Priority)), "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(20, 55, fmt.Sprintf("Requester: %s %s (%s)", view.FirstName, view.LastName, view.Email))
	pdf.Text(20, 62, "Department: "+orNA(view.DepartmentName))

	rows := fieldRows(view)

	// Field table
	pdf.SetY(75)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(headerGreen.r, headerGreen.g, headerGreen.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(40, 8, "Field", "1", 0, "L", true, 0, "")
	pdf.CellFormat(142, 8, "Details", "1", 1, "L", true, 0, "")

	pdf.SetTextColor(0, 0, 0)
	for i, row := range rows {
		fill := i%2 == 1
		pdf.SetFillColor(240, 240, 240)
		x, y := pdf.GetX(), pdf.GetY()

		pdf.SetFont("Helvetica", "", 10)
		lines := pdf.SplitText(row[1], 142-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		height := float64(len(lines)) * 6
		if height < 8 {
			height = 8
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, height, row[0], "1", 0, "L", fill, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(x+40, y)
		pdf.MultiCell(142, height/float64(len(lines)), row[1], "1", "L", fill)
		pdf.SetXY(x, y+height)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename names the exported document after the ticket and requester.
func Filename(view *domain.TicketView) string {
	return fmt.Sprintf("Ticket_%d_%s_%s.pdf", view.ID, view.FirstName, view.LastName)
}

func fieldRows(view *domain.TicketView) [][2]string {
	assignee := view.AssigneeName
	if assignee == "" {
		assignee = "Not Assigned"
	}
	rows := [][2]string{
		{"Category:", view.Category},
		{"Description:", view.Description},
		{"Assigned To:", assignee},
		{"Filed By:", orNA(view.FilerName)},
		{"Status:", string(view.Status)},
		{"Priority:", string(view.Priority)},
		{"Created At:", view.CreatedAt.Format("1/2/2006, 3:04:05 PM")},
	}

	if strings.EqualFold(string(view.Status), "resolved") {
		if view.Proof != nil && *view.Proof != "" {
			proof := *view.Proof
			if strings.HasPrefix(proof, "http") {
				if decoded, err := url.QueryUnescape(proof); err == nil {
					proof = decoded
				}
			}
			rows = append(rows, [2]string{"Proof:", proof})
		}
		if view.ResolvedAt != nil {
			rows = append(rows, [2]string{"Resolved At:", view.ResolvedAt.Format("1/2/2006, 3:04:05 PM")})
		}
	}
	return rows
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
