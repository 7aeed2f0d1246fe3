// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// ContactNotificationData holds data for the new-message notification
// sent to the site owner.
type ContactNotificationData struct {
	SiteName string
	Name     string
	Email    string
	Subject  string
	Message  string
	AdminURL string
}

// BuildContactNotification creates the owner notification for a new
// contact message. Replies go straight to the visitor.
func BuildContactNotification(data ContactNotificationData) Email {
	return Email{
		ReplyTo:  data.Email,
		Subject:  fmt.Sprintf("[%s] New message: %s", data.SiteName, data.Subject),
		TextBody: buildContactText(data),
		HTMLBody: render(contactTmpl, data),
	}
}

func buildContactText(data ContactNotificationData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "New message from %s <%s>\n\n", data.Name, data.Email)
	fmt.Fprintf(&buf, "Subject: %s\n\n", data.Subject)
	buf.WriteString(data.Message + "\n")
	if data.AdminURL != "" {
		fmt.Fprintf(&buf, "\nView it in the admin: %s\n", data.AdminURL)
	}
	return buf.String()
}

// PasswordResetData holds data for password reset emails.
type PasswordResetData struct {
	SiteName  string
	Name      string
	ResetURL  string
	ExpiresIn string // e.g., "10 minutes"
}

// BuildPasswordReset creates the reset email with both HTML and text bodies.
func BuildPasswordReset(data PasswordResetData) Email {
	return Email{
		Subject:  fmt.Sprintf("Reset your %s password", data.SiteName),
		TextBody: buildResetText(data),
		HTMLBody: render(resetTmpl, data),
	}
}

func buildResetText(data PasswordResetData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", data.Name)
	buf.WriteString("Someone asked to reset the password for your account. Open this link to choose a new one:\n\n")
	buf.WriteString(data.ResetURL + "\n\n")
	fmt.Fprintf(&buf, "The link expires in %s.\n\n", data.ExpiresIn)
	buf.WriteString("If you did not request this, you can safely ignore this email.\n")
	return buf.String()
}

var (
	contactTmpl = template.Must(template.New("contact").Parse(layoutHTML + contactHTML))
	resetTmpl   = template.Must(template.New("reset").Parse(layoutHTML + resetHTML))
)

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	_ = t.ExecuteTemplate(&buf, "layout", data)
	return buf.String()
}

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 520px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 28px 32px 20px; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 22px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px; font-size: 15px; color: #374151; line-height: 1.5;">
              {{template "content" .}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>{{end}}`

const contactHTML = `{{define "content"}}
<p style="margin: 0 0 12px;"><strong>{{.Name}}</strong> &lt;{{.Email}}&gt; wrote:</p>
<p style="margin: 0 0 12px; font-weight: 600;">{{.Subject}}</p>
<div style="background-color: #f9fafb; border-radius: 6px; padding: 16px; white-space: pre-wrap;">{{.Message}}</div>
{{if .AdminURL}}<p style="margin: 24px 0 0;"><a href="{{.AdminURL}}" style="color: #4f46e5;">Open in admin</a></p>{{end}}
{{end}}`

const resetHTML = `{{define "content"}}
<p style="margin: 0 0 16px;">Hi {{.Name}},</p>
<p style="margin: 0 0 24px;">Someone asked to reset the password for your account.</p>
<table role="presentation" width="100%" cellspacing="0" cellpadding="0">
  <tr>
    <td align="center">
      <a href="{{.ResetURL}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-weight: 500; border-radius: 6px;">Choose a new password</a>
    </td>
  </tr>
</table>
<p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">This link expires in {{.ExpiresIn}}. If you did not request it, ignore this email.</p>
{{end}}`
