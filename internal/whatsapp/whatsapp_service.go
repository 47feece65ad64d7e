package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aquagem-backend/internal/notify"
)

const aiSensyURL = "https://backend.aisensy.com/campaign/t1/api/v2"

// AiSensyService sends WhatsApp template messages via AiSensy. Each
// payload's Template is the AiSensy campaign name.
type AiSensyService struct {
	APIKey   string
	BaseURL  string
	UserName string
	client   *http.Client
}

// NewAiSensyService creates a new AiSensy WhatsApp service
func NewAiSensyService(apiKey string) *AiSensyService {
	return &AiSensyService{
		APIKey:   apiKey,
		BaseURL:  aiSensyURL,
		UserName: "AquaGem",
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *AiSensyService) Channel() string { return "whatsapp" }

// Send sends a template message via AiSensy
func (s *AiSensyService) Send(ctx context.Context, target string, payload notify.Payload) (notify.Outcome, error) {
	if payload.Template == "" {
		return notify.Outcome{}, notify.Permanent(fmt.Errorf("whatsapp message needs a campaign template"))
	}
	params := payload.Params
	if len(params) == 0 && payload.Message != "" {
		params = []string{payload.Message}
	}

	body := map[string]interface{}{
		"apiKey":         s.APIKey,
		"campaignName":   payload.Template,
		"destination":    formatPhoneNumber(target),
		"userName":       s.UserName,
		"templateParams": params,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return notify.Outcome{}, notify.Permanent(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return notify.Outcome{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return notify.Outcome{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 500 {
		return notify.Outcome{}, fmt.Errorf("AiSensy API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return notify.Outcome{}, notify.Permanent(fmt.Errorf("AiSensy API error (status %d): %s", resp.StatusCode, string(respBody)))
	}

	var parsed struct {
		SubmittedMessageID string `json:"submitted_message_id"`
	}
	json.Unmarshal(respBody, &parsed)

	return notify.Outcome{Channel: s.Channel(), MessageID: parsed.SubmittedMessageID}, nil
}

// formatPhoneNumber formats phone number for WhatsApp (with country code)
func formatPhoneNumber(phone string) string {
	cleaned := ""
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			cleaned += string(c)
		}
	}
	if len(cleaned) == 10 {
		return "91" + cleaned
	}
	return cleaned
}
