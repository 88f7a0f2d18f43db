package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Line is one order line in a confirmation email.
type Line struct {
	Name     string
	Quantity int
}

// Sender delivers order confirmations. Delivery is fire-and-forget: the
// caller logs failures but never rolls back on them.
type Sender interface {
	SendOrderConfirmation(to, firstName string, orderID int, lines []Line, totalCents int64, currency string) error
}

// BrevoSender posts transactional emails to a Brevo-style SMTP API.
type BrevoSender struct {
	url         string
	apiKey      string
	senderEmail string
	client      *http.Client
}

func NewBrevoSender(url, apiKey, senderEmail string) *BrevoSender {
	return &BrevoSender{
		url:         url,
		apiKey:      apiKey,
		senderEmail: senderEmail,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *BrevoSender) SendOrderConfirmation(to, firstName string, orderID int, lines []Line, totalCents int64, currency string) error {
	items := make([]string, 0, len(lines))
	for _, l := range lines {
		items = append(items, fmt.Sprintf("%dx %s", l.Quantity, l.Name))
	}

	body := fmt.Sprintf(
		"Hi %s, this email confirms your successful payment for order #%d.\nItems: %s\nTotal: %s %s\n\nThank you for your order!",
		firstName, orderID, strings.Join(items, ", "), FormatCents(totalCents), strings.ToUpper(currency),
	)

	payload, err := json.Marshal(map[string]any{
		"sender":      map[string]string{"name": "store", "email": s.senderEmail},
		"to":          []map[string]string{{"email": to}},
		"subject":     fmt.Sprintf("Order Confirmation - #%d", orderID),
		"textContent": body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("content-type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("email provider returned %d", res.StatusCode)
	}
	return nil
}

// NopSender discards confirmations; used in tests and when no provider is
// configured.
type NopSender struct{}

func (NopSender) SendOrderConfirmation(string, string, int, []Line, int64, string) error {
	return nil
}

// FormatCents renders integer cents as a decimal amount, e.g. 3000 -> "30.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
