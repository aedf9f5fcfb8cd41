package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"
)

// ResendEndpoint is the Resend API URL for sending one email.
const ResendEndpoint = "https://api.resend.com/emails"

// Signup describes a new subscription for the notification email.
type Signup struct {
	Email string
	IP    string
	At    time.Time
}

// Notifier is told about every successful subscription.
type Notifier interface {
	Notify(ctx context.Context, s Signup) error
}

// ResendNotifier emails signups to a fixed address through Resend.
type ResendNotifier struct {
	APIKey   string
	From     string
	To       string
	Endpoint string
	Client   *http.Client
}

// NewResendNotifier creates a notifier sending from from to to.
func NewResendNotifier(apiKey, from, to string) *ResendNotifier {
	return &ResendNotifier{
		APIKey:   apiKey,
		From:     from,
		To:       to,
		Endpoint: ResendEndpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type resendEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Notify implements Notifier.
func (n *ResendNotifier) Notify(ctx context.Context, s Signup) error {
	var body bytes.Buffer
	if err := SignupEmail(s).Render(ctx, &body); err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	payload, err := json.Marshal(resendEmail{
		From:    n.From,
		To:      n.To,
		Subject: "New Newsletter Subscription",
		HTML:    body.String(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+n.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend: %s: %s", resp.Status, bytes.TrimSpace(detail))
	}
	return nil
}

// SignupEmail renders the notification email body.
func SignupEmail(s Signup) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ip := s.IP
		if ip == "" {
			ip = "Unknown"
		}
		var buf bytes.Buffer
		buf.WriteString("<h2>New Newsletter Subscription</h2>\n")
		fmt.Fprintf(&buf, "<p><strong>Email:</strong> %s</p>\n", html.EscapeString(s.Email))
		fmt.Fprintf(&buf, "<p><strong>Timestamp:</strong> %s</p>\n", s.At.UTC().Format(time.RFC3339))
		fmt.Fprintf(&buf, "<p><strong>IP Address:</strong> %s</p>\n", html.EscapeString(ip))
		_, err := w.Write(buf.Bytes())
		return err
	})
}
