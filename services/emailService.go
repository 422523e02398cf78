package services

import (
	"fmt"
	"html"
	"log"

	"github.com/resend/resend-go/v2"
)

// ReplyEmail describes one "someone replied to your comment" message.
type ReplyEmail struct {
	To_Email     string
	To_Name      string
	Replier_Name string
	Reply_Text   string
	Thread_URL   string
}

// EmailSender is the part of the email service the notification triggers use.
type EmailSender interface {
	SendReplyNotificationEmail(email ReplyEmail) error
}

type EmailService struct {
	client *resend.Client
	from   string
}

var emailService EmailSender

// InitEmailService sets up Resend. Without an API key reply notifications are
// simply not sent.
func InitEmailService(apiKey string, from string) {
	if apiKey == "" {
		log.Println("WARNING: RESEND_API_KEY not set. Reply notification emails are disabled.")
		return
	}

	emailService = &EmailService{
		client: resend.NewClient(apiKey),
		from:   from,
	}

	log.Println("Email service initialized successfully with Resend")
}

// GetEmailService returns the configured sender, or nil when email is disabled.
func GetEmailService() EmailSender {
	return emailService
}

// SetEmailService swaps the sender and returns the previous one.
func SetEmailService(sender EmailSender) EmailSender {
	old := emailService
	emailService = sender
	return old
}

const maxExcerptRunes = 280

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= maxExcerptRunes {
		return text
	}
	return string(runes[:maxExcerptRunes]) + "…"
}

func (s *EmailService) SendReplyNotificationEmail(email ReplyEmail) error {
	if s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	replyText := excerpt(email.Reply_Text)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            text-align: center;
            padding: 20px 0;
            border-bottom: 2px solid #7f54b3;
        }
        .header h1 {
            color: #7f54b3;
            margin: 0;
        }
        .reply {
            background-color: #f6f4fa;
            border-left: 4px solid #7f54b3;
            padding: 15px 20px;
            margin: 20px 0;
            white-space: pre-wrap;
        }
        .button {
            display: inline-block;
            background-color: #7f54b3;
            color: #fff;
            padding: 10px 20px;
            border-radius: 4px;
            text-decoration: none;
        }
        .footer {
            text-align: center;
            padding: 20px 0;
            border-top: 1px solid #ddd;
            font-size: 12px;
            color: #666;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>PressTune</h1>
    </div>

    <div class="content">
        <p>Hi %s,</p>

        <p><strong>%s</strong> replied to your comment:</p>

        <div class="reply">%s</div>

        <p><a class="button" href="%s">View the conversation</a></p>
    </div>

    <div class="footer">
        <p>You are receiving this because someone replied to a comment you posted.</p>
    </div>
</body>
</html>
`, html.EscapeString(email.To_Name), html.EscapeString(email.Replier_Name), html.EscapeString(replyText), html.EscapeString(email.Thread_URL))

	textBody := fmt.Sprintf(`Hi %s,

%s replied to your comment:

%s

View the conversation: %s
`, email.To_Name, email.Replier_Name, replyText, email.Thread_URL)

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email.To_Email},
		Subject: fmt.Sprintf("%s replied to your comment", email.Replier_Name),
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		log.Printf("Failed to send reply notification email to %s: %v", email.To_Email, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Successfully sent reply notification email to %s. Email ID: %s", email.To_Email, sent.Id)
	return nil
}
