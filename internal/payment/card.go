package payment

import (
	"fmt"
	"time"
)

// Card carries the details submitted with a payment request.
type Card struct {
	Number   string `json:"cardNumber"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
	CVC      string `json:"cvc"`
}

// CardError names the field that failed structural validation.
type CardError struct {
	Field string
}

func (e *CardError) Error() string {
	return fmt.Sprintf("invalid payment details: %s", e.Field)
}

// Validate checks the card structurally before the gateway is contacted.
func (c Card) Validate() error {
	if !luhnValid(c.Number) {
		return &CardError{Field: "cardNumber"}
	}
	if c.ExpMonth < 1 || c.ExpMonth > 12 {
		return &CardError{Field: "expMonth"}
	}
	now := time.Now()
	if c.ExpYear < now.Year() || (c.ExpYear == now.Year() && c.ExpMonth < int(now.Month())) {
		return &CardError{Field: "expYear"}
	}
	if len(c.CVC) < 3 || len(c.CVC) > 4 || !digitsOnly(c.CVC) {
		return &CardError{Field: "cvc"}
	}
	return nil
}

func luhnValid(number string) bool {
	if len(number) < 12 || len(number) > 19 || !digitsOnly(number) {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
