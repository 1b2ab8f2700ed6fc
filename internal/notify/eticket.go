package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"traffic-service/internal/model"
)

const dateLayout = "2006-01-02 15:04"

// ETicket is the content of a paid-violation notice.
type ETicket struct {
	TicketNumber  string
	Status        string
	LicensePlate  string
	OwnerName     string
	OwnerEmail    string
	ViolationName string
	FineAmount    string
	Location      string
	ViolationDate string
	PaymentDate   string
	OfficerName   string
	ServiceNumber string
}

var printer = message.NewPrinter(language.English)

// FormatAmount renders whole currency units with thousands separators, e.g. "MWK 20,000.00".
func FormatAmount(label string, amount int64) string {
	return printer.Sprintf("%s %d.00", label, amount)
}

// BuildETicket extracts the notice fields from a joined record. ok is false
// when the vehicle has no owner email on file.
func BuildETicket(record model.ViolationRecord, currencyLabel string, loc *time.Location) (ETicket, bool) {
	if record.Vehicle == nil || record.Vehicle.OwnerEmail == nil || strings.TrimSpace(*record.Vehicle.OwnerEmail) == "" {
		return ETicket{}, false
	}

	v := record.Violation
	t := ETicket{
		TicketNumber:  v.TicketNumber,
		Status:        strings.ToUpper(string(v.Status)),
		LicensePlate:  record.Vehicle.LicensePlate,
		OwnerName:     record.Vehicle.OwnerName,
		OwnerEmail:    strings.TrimSpace(*record.Vehicle.OwnerEmail),
		FineAmount:    FormatAmount(currencyLabel, v.FineAmount),
		Location:      v.Location,
		ViolationDate: v.IssuedAt.In(loc).Format(dateLayout),
	}
	if v.PaidAt != nil {
		t.PaymentDate = v.PaidAt.In(loc).Format(dateLayout)
	}
	if record.ViolationType != nil {
		t.ViolationName = record.ViolationType.Name
	}
	if record.Officer != nil {
		t.OfficerName = record.Officer.FullName
		t.ServiceNumber = record.Officer.ServiceNumber
	}
	return t, true
}

func (t ETicket) Subject() string {
	return "Traffic Violation E-Ticket - " + t.TicketNumber
}

func (t ETicket) PlainText() string {
	var b strings.Builder
	b.WriteString("Traffic Violation E-Ticket\n\n")
	fmt.Fprintf(&b, "Ticket Number: %s\n", t.TicketNumber)
	fmt.Fprintf(&b, "Status: %s\n", t.Status)
	fmt.Fprintf(&b, "Vehicle: %s\n", t.LicensePlate)
	fmt.Fprintf(&b, "Owner: %s\n", t.OwnerName)
	fmt.Fprintf(&b, "Violation: %s\n", t.ViolationName)
	fmt.Fprintf(&b, "Fine Amount: %s\n", t.FineAmount)
	fmt.Fprintf(&b, "Location: %s\n", t.Location)
	fmt.Fprintf(&b, "Date: %s\n", t.ViolationDate)
	fmt.Fprintf(&b, "Payment Date: %s\n", t.PaymentDate)
	fmt.Fprintf(&b, "Issuing Officer: %s (%s)\n\n", t.OfficerName, t.ServiceNumber)
	b.WriteString("This is an automated email. Please do not reply.\nKeep this e-ticket for your records.\n")
	return b.String()
}

var eticketHTML = template.Must(template.New("eticket").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
  <h3>Traffic Violation E-Ticket</h3>
  <hr>
  <p><strong>Ticket Number:</strong> {{.TicketNumber}}</p>
  <p><strong>Status:</strong> <span style="color: green;">{{.Status}}</span></p>
  <p><strong>Vehicle:</strong> {{.LicensePlate}}</p>
  <p><strong>Owner:</strong> {{.OwnerName}}</p>
  <p><strong>Violation:</strong> {{.ViolationName}}</p>
  <p><strong>Fine Amount:</strong> {{.FineAmount}}</p>
  <p><strong>Location:</strong> {{.Location}}</p>
  <p><strong>Date:</strong> {{.ViolationDate}}</p>
  <p><strong>Payment Date:</strong> {{.PaymentDate}}</p>
  <p><strong>Issuing Officer:</strong> {{.OfficerName}} ({{.ServiceNumber}})</p>
  <hr>
  <p style="color: #666; font-size: 12px;">This is an automated email. Please do not reply.</p>
  <p style="color: #666; font-size: 12px;">Keep this e-ticket for your records.</p>
</body>
</html>`))

func (t ETicket) HTML() (string, error) {
	var buf bytes.Buffer
	if err := eticketHTML.Execute(&buf, t); err != nil {
		return "", err
	}
	return buf.String(), nil
}
