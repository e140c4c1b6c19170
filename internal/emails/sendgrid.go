package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultSendGridBaseURL = "https://api.sendgrid.com"

var ErrSendGridUnavailable = errors.New("sendgrid request failed")

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, toName string, r Rendered) error
}

// SendGridSender is a thin adapter over the SendGrid v3 mail send endpoint.
// BaseURL is injectable so tests can point it at a stub.
type SendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
	baseURL   string
	http      *http.Client
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   defaultSendGridBaseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL overrides the API host. Test hook.
func (s *SendGridSender) WithBaseURL(u string) *SendGridSender {
	s.baseURL = strings.TrimSuffix(u, "/")
	return s
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

func (s *SendGridSender) Send(ctx context.Context, to, toName string, r Rendered) error {
	if to == "" {
		return fmt.Errorf("send email: recipient is required")
	}

	payload := sendGridRequest{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: to, Name: toName}}},
		},
		From:    sendGridAddress{Email: s.fromEmail, Name: s.fromName},
		Subject: r.Subject,
		Content: []sendGridContent{{Type: "text/plain", Value: r.Body}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendGridUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("%w: %s: %s", ErrSendGridUnavailable, resp.Status, summarizeSendGridError(detail))
	}
	return nil
}

func summarizeSendGridError(body []byte) string {
	var e struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &e); err == nil && len(e.Errors) > 0 {
		return e.Errors[0].Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
