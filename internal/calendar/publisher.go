package calendar

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mad-three/server/internal/config"
	"github.com/Mad-three/server/internal/util"
)

// RejectionError is a provider response with a non-2xx status. The
// orchestrator inspects StatusCode to decide whether the credential
// expired (401) or the failure is terminal.
type RejectionError struct {
	StatusCode int
	Body       string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("calendar publish rejected: status %d: %s", e.StatusCode, util.TruncateLog(e.Body, 256))
}

// Publisher sends rendered payloads to the provider's schedule API.
type Publisher struct {
	httpClient *http.Client
	apiURL     string
	calendarID string
}

// NewPublisher builds a Publisher for the configured endpoint and
// target calendar.
func NewPublisher(provider config.ProviderConfig, calendarID string) *Publisher {
	return &Publisher{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiURL:     provider.CalendarURL,
		calendarID: calendarID,
	}
}

// Publish issues one POST with the payload and the access credential.
// A 2xx response returns the raw provider body; any other status
// returns *RejectionError.
func (p *Publisher) Publish(ctx context.Context, accessToken, payload string) (string, error) {
	form := url.Values{
		"calendarId":         {p.calendarID},
		"scheduleIcalString": {payload},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call calendar api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read calendar response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RejectionError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	log.Printf("calendar publish accepted (status %d): %s", resp.StatusCode, util.TruncateBytes(body))
	return string(body), nil
}
