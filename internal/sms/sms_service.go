package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"aquagem-backend/internal/notify"
)

const fast2SMSURL = "https://www.fast2sms.com/dev/bulkV2"

// Fast2SMSService sends SMS through Fast2SMS (India). One call is one
// attempt; retries belong to the caller.
type Fast2SMSService struct {
	APIKey  string
	Route   string // "q" (quick), "dlt" or "v3"
	BaseURL string
	client  *http.Client
}

// NewFast2SMSService creates a new Fast2SMS service
func NewFast2SMSService(apiKey, route string) *Fast2SMSService {
	if route == "" {
		route = "q" // Quick route works without DLT registration
	}
	return &Fast2SMSService{
		APIKey:  apiKey,
		Route:   route,
		BaseURL: fast2SMSURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Fast2SMSService) Channel() string { return "sms" }

type fast2SMSResponse struct {
	Return    bool        `json:"return"`
	RequestID string      `json:"request_id"`
	Message   interface{} `json:"message"`
}

// Send sends a single SMS message
func (s *Fast2SMSService) Send(ctx context.Context, target string, payload notify.Payload) (notify.Outcome, error) {
	phone := normalizeMobile(target)
	if len(phone) != 10 {
		return notify.Outcome{}, notify.Permanent(fmt.Errorf("invalid mobile %q", target))
	}

	q := url.Values{}
	q.Set("authorization", s.APIKey)
	q.Set("route", s.Route)
	q.Set("message", payload.Message)
	q.Set("language", "english")
	q.Set("flash", "0")
	q.Set("numbers", phone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return notify.Outcome{}, fmt.Errorf("failed to create SMS request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return notify.Outcome{}, fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode >= 500:
		return notify.Outcome{}, fmt.Errorf("SMS API error (status %d): %s", resp.StatusCode, string(body))
	case resp.StatusCode != http.StatusOK:
		return notify.Outcome{}, notify.Permanent(fmt.Errorf("SMS API error (status %d): %s", resp.StatusCode, string(body)))
	}

	var apiResp fast2SMSResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return notify.Outcome{}, fmt.Errorf("SMS API returned unreadable body: %w", err)
	}
	// Check for API-level errors
	if !apiResp.Return {
		return notify.Outcome{}, notify.Permanent(fmt.Errorf("SMS API error: %s", string(body)))
	}

	return notify.Outcome{Channel: s.Channel(), MessageID: apiResp.RequestID}, nil
}

// MockSMSService records messages instead of sending them
type MockSMSService struct {
	mu   sync.Mutex
	Sent []MockMessage
}

// MockMessage is one message captured by MockSMSService
type MockMessage struct {
	To      string
	Message string
}

// NewMockSMSService creates a mock SMS service for development
func NewMockSMSService() *MockSMSService {
	return &MockSMSService{}
}

func (s *MockSMSService) Channel() string { return "sms" }

func (s *MockSMSService) Send(_ context.Context, target string, payload notify.Payload) (notify.Outcome, error) {
	s.mu.Lock()
	s.Sent = append(s.Sent, MockMessage{To: target, Message: payload.Message})
	n := len(s.Sent)
	s.mu.Unlock()

	log.Printf("[MOCK SMS] To: %s | Message: %s", target, payload.Message)
	return notify.Outcome{Channel: s.Channel(), MessageID: fmt.Sprintf("mock-%d", n)}, nil
}

// Last returns the most recent captured message.
func (s *MockSMSService) Last() (MockMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Sent) == 0 {
		return MockMessage{}, false
	}
	return s.Sent[len(s.Sent)-1], true
}

// normalizeMobile strips formatting and a leading 91 country code.
func normalizeMobile(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	cleaned := b.String()
	if len(cleaned) == 12 && strings.HasPrefix(cleaned, "91") {
		return cleaned[2:]
	}
	return cleaned
}
