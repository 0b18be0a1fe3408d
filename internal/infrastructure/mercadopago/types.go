package mercadopago

import (
	"encoding/json"
	"fmt"
)

type preferenceItemBody struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id"`
}

type payerBody struct {
	Email string `json:"email,omitempty"`
}

type backURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type preferenceRequestBody struct {
	Items             []preferenceItemBody `json:"items"`
	Payer             *payerBody           `json:"payer,omitempty"`
	ExternalReference string               `json:"external_reference"`
	Metadata          map[string]string    `json:"metadata,omitempty"`
	NotificationURL   string               `json:"notification_url,omitempty"`
	BackURLs          backURLs             `json:"back_urls"`
	AutoReturn        string               `json:"auto_return,omitempty"`
	Expires           bool                 `json:"expires,omitempty"`
	ExpirationDateTo  string               `json:"expiration_date_to,omitempty"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// APIError is a non-2xx answer from the gateway API.
type APIError struct {
	StatusCode int
	Message    string
	ErrorCode  string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("mercadopago API error: status %d, code %s: %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("mercadopago API error: status %d: %s", e.StatusCode, e.Message)
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Message: string(body)}

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			apiErr.Message = parsed.Message
		}
		apiErr.ErrorCode = parsed.Error
	}
	return apiErr
}
