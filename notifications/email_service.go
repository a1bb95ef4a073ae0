package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	config "github.com/prasetyadi/edu_registration/configs"
)

// EmailService is an explicitly owned handle: main constructs one and
// injects it wherever email is needed. The Brevo client inside is built
// lazily on first send.
type EmailService struct {
	once        sync.Once
	apiKey      string
	senderEmail string
	senderName  string
	client      *http.Client
	disabled    bool
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func NewEmailService() *EmailService {
	return &EmailService{}
}

func (s *EmailService) init() {
	s.apiKey = config.Config("BREVO_API_KEY")
	s.senderEmail = config.Config("EMAIL_SENDER")
	s.senderName = config.Config("EMAIL_SENDER_NAME")
	s.client = &http.Client{Timeout: 10 * time.Second}

	if s.apiKey == "" || s.senderEmail == "" || s.senderName == "" {
		log.Println("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		s.disabled = true
		return
	}
	log.Printf("✅ Email service initialized (sender: %s)", s.senderEmail)
}

// Send delivers one transactional email. Failures are returned to the
// caller to log and report; they never abort a payment mutation.
func (s *EmailService) Send(toEmail, subject, htmlContent string) error {
	s.once.Do(s.init)
	if s.disabled {
		log.Println("Email service not configured, skipping email send.")
		return nil
	}

	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}
	recipientName := toEmail[:strings.Index(toEmail, "@")]

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.senderName, "email": s.senderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.brevo.com/v3/smtp/email", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		log.Printf("Brevo API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("failed to send email via Brevo: %s", string(bodyBytes))
	}

	return nil
}
