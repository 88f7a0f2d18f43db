package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Intent is the provider's authorization result.
type Intent struct {
	ID          string `json:"id"`
	AmountCents int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

// Gateway creates a payment intent for an amount. Calls are blocking with
// a bounded timeout carried by ctx and are not cancellable once issued.
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (Intent, error)
}

// HTTPGateway talks to a Stripe-style payment-intents endpoint.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, amountCents int64, currency string) (Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	form.Set("payment_method_types[]", "card")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return Intent{}, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	res, err := g.client.Do(req)
	if err != nil {
		return Intent{}, fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Intent{}, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Intent{}, fmt.Errorf("payment provider returned %d", res.StatusCode)
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return Intent{}, fmt.Errorf("malformed payment provider response: %w", err)
	}
	return intent, nil
}

// StubGateway is a scriptable gateway for tests and local development.
type StubGateway struct {
	Err     error
	Intents []Intent
}

func (g *StubGateway) CreateIntent(_ context.Context, amountCents int64, currency string) (Intent, error) {
	if g.Err != nil {
		return Intent{}, g.Err
	}
	intent := Intent{
		ID:          "pi_" + uuid.NewString(),
		AmountCents: amountCents,
		Currency:    currency,
		Status:      "succeeded",
	}
	g.Intents = append(g.Intents, intent)
	return intent, nil
}

var _ Gateway = (*HTTPGateway)(nil)
var _ Gateway = (*StubGateway)(nil)

// ErrDeclined marks a gateway refusal as opposed to a transport failure.
var ErrDeclined = errors.New("payment was declined")
