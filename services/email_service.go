package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/copafacil/copa-manager/config"
)

// EmailService delivers transactional mail over SMTP. Callers treat send
// failures as non-fatal: a campaign must never fail to provision because the
// mail server was down.
type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Implicit TLS
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial failed: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("smtp client failed: %w", err)
		}
	} else {
		// STARTTLS (port 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial failed: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp starttls failed: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("smtp mail from failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt to failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data failed: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("smtp close failed: %w", err)
	}
	return nil
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<h2>Seu campeonato está no ar!</h2>
<p>O campeonato <strong>{{.CampaignName}}</strong> foi criado com sucesso.</p>
<p>Página pública: <a href="{{.CampaignURL}}">{{.CampaignURL}}</a></p>
<p>Painel do administrador: <a href="{{.AdminURL}}">{{.AdminURL}}</a></p>
<p>Usuário: <strong>{{.Username}}</strong></p>
{{if .TempPassword}}<p>Senha temporária: <strong>{{.TempPassword}}</strong> (você deverá trocá-la no primeiro acesso)</p>{{end}}
<p>Se preferir, defina sua senha por este link (válido por 48 horas): <a href="{{.SetupURL}}">{{.SetupURL}}</a></p>
`))

type WelcomeEmailData struct {
	CampaignName string
	CampaignURL  string
	AdminURL     string
	Username     string
	TempPassword string
	SetupURL     string
}

// SendWelcomeEmail delivers the campaign URL, the admin panel URL and the
// first-login credentials to a freshly provisioned organizer.
func (s *EmailService) SendWelcomeEmail(to string, data WelcomeEmailData) error {
	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}
	return s.SendEmail([]string{to}, "Seu campeonato está pronto - "+data.CampaignName, body.String())
}

func (s *EmailService) SendExpiryWarningEmail(to, campaignName, campaignURL string, daysLeft int) error {
	body := fmt.Sprintf(
		`<p>O campeonato <strong>%s</strong> expira em %d dias.</p>
		<p>Renove para manter a página <a href="%s">%s</a> no ar.</p>`,
		campaignName, daysLeft, campaignURL, campaignURL)
	return s.SendEmail([]string{to}, "Seu campeonato expira em breve", body)
}

func (s *EmailService) SendExpiredEmail(to, campaignName string) error {
	body := fmt.Sprintf(
		`<p>O período contratado do campeonato <strong>%s</strong> terminou e a página foi desativada.</p>
		<p>Adquira um novo plano para reativá-la.</p>`, campaignName)
	return s.SendEmail([]string{to}, "Campeonato desativado", body)
}

func (s *EmailService) SendPasswordResetEmail(to, username, resetURL string) error {
	body := fmt.Sprintf(
		`<p>Recebemos um pedido de redefinição de senha para o usuário <strong>%s</strong>.</p>
		<p>Defina uma nova senha por este link: <a href="%s">%s</a></p>
		<p>Se você não fez este pedido, ignore esta mensagem.</p>`,
		username, resetURL, resetURL)
	return s.SendEmail([]string{to}, "Redefinição de senha", body)
}

// SendOwnerNotification tells the platform owner about a new sale or trial.
func (s *EmailService) SendOwnerNotification(subject, message string) error {
	if s.cfg.OwnerEmail == "" {
		return nil
	}
	return s.SendEmail([]string{s.cfg.OwnerEmail}, subject, message)
}
