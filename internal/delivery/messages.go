package delivery

import (
	"fmt"
	"html"
	"net/mail"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"devstudio-site/internal/models"
)

// Kinds of mail produced for one inquiry.
const (
	KindNotification   = "notification"
	KindAcknowledgment = "acknowledgment"
)

// Sender display names.
const (
	NotificationSenderName   = "Dev Studio Contact"
	AcknowledgmentSenderName = "Dev Studio"
)

var (
	strictPolicy     = bluemonday.StrictPolicy()
	headerLineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
)

// Message is one outbound mail, independent of transport.
type Message struct {
	Kind    string
	From    mail.Address
	To      mail.Address
	ReplyTo *mail.Address
	Subject string
	Text    string
	HTML    string
}

// Recipients returns the envelope recipients.
func (m Message) Recipients() []string {
	return []string{m.To.Address}
}

// ComposeNotification builds the mail telling the business about an inquiry.
// It replies to the submitter.
func ComposeNotification(inq models.Inquiry, sender, receiver string) Message {
	text := strings.Join([]string{
		"New contact form submission:",
		"",
		"Name: " + inq.Name,
		"Email: " + inq.Email,
		"Company: " + inq.Company,
		"Budget Range: " + inq.BudgetRange,
		"",
		"Project Brief:",
		inq.ProjectBrief,
	}, "\n")

	return Message{
		Kind:    KindNotification,
		From:    mail.Address{Name: NotificationSenderName, Address: sender},
		To:      mail.Address{Address: receiver},
		ReplyTo: &mail.Address{Name: HeaderSafe(inq.Name), Address: inq.Email},
		Subject: HeaderSafe(fmt.Sprintf("New project inquiry from %s", inq.Name)),
		Text:    text,
		HTML:    notificationHTML(inq),
	}
}

// ComposeAcknowledgment builds the confirmation sent back to the submitter.
func ComposeAcknowledgment(inq models.Inquiry, sender string) Message {
	text := strings.Join([]string{
		fmt.Sprintf("Hi %s,", inq.Name),
		"",
		"Thanks for reaching out to Dev Studio.",
		"We received your project brief and our team will follow up shortly.",
		"",
		"Your submitted details:",
		"Company: " + inq.Company,
		"Budget: " + inq.BudgetRange,
		"Project Brief: " + inq.ProjectBrief,
		"",
		"Best regards,",
		"Dev Studio Team",
	}, "\n")

	return Message{
		Kind:    KindAcknowledgment,
		From:    mail.Address{Name: AcknowledgmentSenderName, Address: sender},
		To:      mail.Address{Name: HeaderSafe(inq.Name), Address: inq.Email},
		Subject: "We received your inquiry",
		Text:    text,
		HTML:    acknowledgmentHTML(inq),
	}
}

// Compose returns both mails for an inquiry, notification first.
func Compose(inq models.Inquiry, sender, receiver string) []Message {
	return []Message{
		ComposeNotification(inq, sender, receiver),
		ComposeAcknowledgment(inq, sender),
	}
}

// HeaderSafe flattens line breaks so user text cannot inject headers.
func HeaderSafe(s string) string {
	return headerLineBreaks.Replace(s)
}

// sanitize strips any markup from user text and escapes what remains.
func sanitize(s string) string {
	clean := strictPolicy.Sanitize(s)
	// StrictPolicy leaves entities encoded; line breaks become <br>.
	return strings.ReplaceAll(clean, "\n", "<br>")
}

func notificationHTML(inq models.Inquiry) string {
	var b strings.Builder
	b.WriteString("<p>New contact form submission:</p>\n<ul>\n")
	row(&b, "Name", inq.Name)
	row(&b, "Email", inq.Email)
	row(&b, "Company", inq.Company)
	row(&b, "Budget Range", inq.BudgetRange)
	b.WriteString("</ul>\n<p><strong>Project Brief:</strong></p>\n")
	b.WriteString("<p>" + sanitize(inq.ProjectBrief) + "</p>\n")
	return b.String()
}

func acknowledgmentHTML(inq models.Inquiry) string {
	var b strings.Builder
	b.WriteString("<p>Hi " + sanitize(inq.Name) + ",</p>\n")
	b.WriteString("<p>Thanks for reaching out to Dev Studio.<br>")
	b.WriteString("We received your project brief and our team will follow up shortly.</p>\n")
	b.WriteString("<p>Your submitted details:</p>\n<ul>\n")
	row(&b, "Company", inq.Company)
	row(&b, "Budget", inq.BudgetRange)
	row(&b, "Project Brief", inq.ProjectBrief)
	b.WriteString("</ul>\n<p>Best regards,<br>Dev Studio Team</p>\n")
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	b.WriteString("<li><strong>" + html.EscapeString(label) + ":</strong> " + sanitize(value) + "</li>\n")
}
