package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/crewdesk/backend/internal/logger"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<p>Hello {{.FullName}},</p>
<p>Your account has successfully been created! You now have access to our HR
Management System, where you can easily manage your HR-related tasks and stay
updated on company policies.</p>

<p>Login details:</p>
<p>Username: {{.Username}}</p>
<p>Email: {{.Email}}</p>
<p>Roles: {{.Roles}}</p>

<p>If you have any questions, feel free to reach out to our HR team.</p>

<p>Welcome aboard!</p>
<p>CrewDesk HR</p>
`))

type welcomeData struct {
	FullName string
	Username string
	Email    string
	Roles    string
}

// Mailer sends account notifications over SMTP. A nil mailer or one without
// a configured host drops messages silently; mail never blocks or fails an
// API request.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	log      *logger.Logger
}

func New(host, port, username, password, from string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		log:      logger.Default().WithComponent("mail"),
	}
}

// SendWelcome delivers the signup mail for a freshly created account.
// Callers run it in a goroutine; failures are logged, not returned.
func (m *Mailer) SendWelcome(ctx context.Context, fullName, email, username string, roles []string) {
	if m == nil || m.host == "" {
		return
	}

	var body bytes.Buffer
	err := welcomeTemplate.Execute(&body, welcomeData{
		FullName: fullName,
		Username: username,
		Email:    email,
		Roles:    strings.Join(roles, ", "),
	})
	if err != nil {
		m.log.Error(ctx, "failed to render welcome mail", err)
		return
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Welcome to CrewDesk HR\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.from, email, body.String(),
	)

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	if err := m.send(addr, auth, email, []byte(msg)); err != nil {
		m.log.Error(ctx, "failed to send welcome mail", err, map[string]interface{}{
			"recipient": email,
		})
		return
	}

	m.log.Info(ctx, "welcome mail sent", map[string]interface{}{
		"recipient": email,
	})
}

func (m *Mailer) send(addr string, auth smtp.Auth, to string, msg []byte) error {
	return smtp.SendMail(addr, auth, m.from, []string{to}, msg)
}
