package templates

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// Message is a rendered e-mail in both formats SendGrid accepts.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// CaseEmailData is what every lifecycle e-mail knows about its case.
type CaseEmailData struct {
	RecipientName string
	CaseID        string
	CaseTitle     string
	CaseURL       string
}

const deadlineLayout = "Jan 2, 2006 at 15:04 MST"

// RenderPlaintiffNotifiedEmail tells the plaintiff verification passed and
// the defendant has been told.
func RenderPlaintiffNotifiedEmail(d CaseEmailData, publishAt time.Time) Message {
	subject := fmt.Sprintf("Case %s verified", d.CaseID)
	text := fmt.Sprintf("Hi %s,\n\nYour case \"%s\" (%s) passed verification. The defendant has been notified and the case will be published on %s.\n\nFollow it here: %s",
		d.RecipientName, d.CaseTitle, d.CaseID, publishAt.UTC().Format(deadlineLayout), d.CaseURL)

	body := fmt.Sprintf(`<h2>Hi %s,</h2>
      <p>Your case <strong>%s</strong> (%s) passed verification.</p>
      <div class="highlight-box">
        <h3>What happens next?</h3>
        <p style="margin-bottom: 0;">The defendant has been notified. The case will be published on <strong>%s</strong>.</p>
      </div>
      <a href="%s" class="cta-button">View Case</a>`,
		esc(d.RecipientName), esc(d.CaseTitle), esc(d.CaseID), publishAt.UTC().Format(deadlineLayout), esc(d.CaseURL))

	return Message{Subject: subject, HTML: renderLayout(subject, body), Text: text}
}

// RenderDefendantNotifiedEmail tells the defendant a case names them and when
// it goes public.
func RenderDefendantNotifiedEmail(d CaseEmailData, publishAt time.Time) Message {
	subject := "A case on DNounce names you"
	text := fmt.Sprintf("Hi %s,\n\nA case titled \"%s\" (%s) has been filed naming you. It will be published on %s. Once published you can submit evidence and arguments.\n\nView it here: %s",
		d.RecipientName, d.CaseTitle, d.CaseID, publishAt.UTC().Format(deadlineLayout), d.CaseURL)

	body := fmt.Sprintf(`<h2>Hi %s,</h2>
      <p>A case titled <strong>%s</strong> (%s) has been filed naming you.</p>
      <div class="highlight-box">
        <h3>Publication on %s</h3>
        <p style="margin-bottom: 0;">Once the case is published you can submit evidence and arguments. The community votes after the debate closes.</p>
      </div>
      <a href="%s" class="cta-button">View Case</a>`,
		esc(d.RecipientName), esc(d.CaseTitle), esc(d.CaseID), publishAt.UTC().Format(deadlineLayout), esc(d.CaseURL))

	return Message{Subject: subject, HTML: renderLayout(subject, body), Text: text}
}

// RenderVerdictEmail reports the community verdict. kept says whether the case
// stays on the platform.
func RenderVerdictEmail(d CaseEmailData, kept bool, keepVotes, deleteVotes int) Message {
	outcome, verb := "deleted", "delete"
	if kept {
		outcome, verb = "kept", "keep"
	}
	subject := fmt.Sprintf("Verdict for case %s: %s", d.CaseID, outcome)
	text := fmt.Sprintf("Hi %s,\n\nVoting on \"%s\" (%s) has closed. The community voted to %s the case (%d keep, %d delete).\n\n%s",
		d.RecipientName, d.CaseTitle, d.CaseID, verb, keepVotes, deleteVotes, d.CaseURL)

	body := fmt.Sprintf(`<h2>Hi %s,</h2>
      <p>Voting on <strong>%s</strong> (%s) has closed.</p>
      <div class="highlight-box">
        <h3>Verdict: %s</h3>
        <p style="margin-bottom: 0;">%d voted to keep, %d voted to delete.</p>
      </div>
      <a href="%s" class="cta-button">View Case</a>`,
		esc(d.RecipientName), esc(d.CaseTitle), esc(d.CaseID), strings.ToUpper(outcome[:1])+outcome[1:], keepVotes, deleteVotes, esc(d.CaseURL))

	return Message{Subject: subject, HTML: renderLayout(subject, body), Text: text}
}

func esc(s string) string {
	return html.EscapeString(s)
}
