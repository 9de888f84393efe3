package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/butchershop/internal/config"
)

// ErrInvalidPhone is returned when a number has no usable digits.
var ErrInvalidPhone = errors.New("invalid phone number")

// Sender delivers text copies of customer notifications.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// APIClient is a resty-backed WhatsApp Cloud API sender.
type APIClient struct {
	httpClient    *resty.Client
	phoneNumberID string
	countryCode   string
}

// NewClient builds a WhatsApp API client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AccessToken)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient:    restyClient,
		phoneNumberID: cfg.PhoneNumberID,
		countryCode:   "44",
	}
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type apiError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// SendText posts a plain text message and returns the provider message id.
func (c *APIClient) SendText(ctx context.Context, to, body string) (string, error) {
	recipient, err := NormalizePhone(to, c.countryCode)
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                recipient,
		"type":              "text",
		"text": map[string]any{
			"body":        body,
			"preview_url": false,
		},
	}

	result := new(sendResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/messages", c.phoneNumberID))
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return "", fmt.Errorf("whatsapp api error: code=%d, message=%s", code, apiErr.Error.Message)
	}

	if len(result.Messages) == 0 {
		return "", nil
	}
	return result.Messages[0].ID, nil
}

// NormalizePhone turns a locally written number such as "07700 900123" into
// international digits ("447700900123").
func NormalizePhone(raw, countryCode string) (string, error) {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	number := digits.String()
	trimmed := strings.TrimSpace(raw)

	switch {
	case number == "":
		return "", ErrInvalidPhone
	case strings.HasPrefix(trimmed, "+"):
		return number, nil
	case strings.HasPrefix(number, "00"):
		return number[2:], nil
	case strings.HasPrefix(number, "0"):
		return countryCode + number[1:], nil
	default:
		return number, nil
	}
}
