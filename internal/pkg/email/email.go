package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/agendahof/agendahof-server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendVerificationCode sends the signup verification code.
func (s *Service) SendVerificationCode(to, code string) error {
	subject := "Verify your email - AgendaHOF"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">Email verification</h2>
        <p>Hello,</p>
        <p>You are creating an AgendaHOF account. Your verification code is:</p>
        <div style="background-color: #f3f4f6; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">
            %s
        </div>
        <p>The code expires in 10 minutes.</p>
        <p>If you did not request this, please ignore this email.</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This email was sent automatically, please do not reply.</p>
    </div>
</body>
</html>
`, code)

	return s.sendHTML(to, subject, body)
}

// SendAppointmentReminder notifies the practitioner of an upcoming
// appointment.
func (s *Service) SendAppointmentReminder(to, patientName, date, startTime string) error {
	subject := "Upcoming appointment - AgendaHOF"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">Appointment reminder</h2>
        <p>Hello,</p>
        <p>You have an upcoming appointment:</p>
        <div style="background-color: #f3f4f6; padding: 15px; margin: 20px 0;">
            <p style="margin: 5px 0;"><strong>Patient:</strong> %s</p>
            <p style="margin: 5px 0;"><strong>Date:</strong> %s</p>
            <p style="margin: 5px 0;"><strong>Time:</strong> %s</p>
        </div>
        <p>Open the app to see the full agenda for that day.</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This email was sent automatically, please do not reply.</p>
    </div>
</body>
</html>
`, patientName, date, startTime)

	return s.sendHTML(to, subject, body)
}

// SendTrialExpiryNotice warns that the free trial is about to end.
func (s *Service) SendTrialExpiryNotice(to, name string, daysLeft int) error {
	subject := "Your trial is ending soon - AgendaHOF"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">Trial ending soon</h2>
        <p>Hello %s,</p>
        <p>Your AgendaHOF free trial ends in <strong>%d day(s)</strong>.</p>
        <p>Subscribe from the app to keep scheduling appointments, managing patients and receiving reminders without interruption.</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This email was sent automatically, please do not reply.</p>
    </div>
</body>
</html>
`, name, daysLeft)

	return s.sendHTML(to, subject, body)
}

func (s *Service) sendHTML(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
