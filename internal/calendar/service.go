package calendar

import (
	"context"
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/Mad-three/server/internal/apperr"
	"github.com/Mad-three/server/internal/auth/naver"
	"github.com/Mad-three/server/internal/db/models"
)

// Service drives one calendar-add invocation: load the user and event,
// render the payload, publish, and on a 401 run exactly one
// refresh-then-retry cycle. No other failure triggers a retry.
type Service struct {
	db         *gorm.DB
	vault      *naver.Vault
	auth       *naver.Service
	serializer *Serializer
	publisher  *Publisher
}

// NewService wires the calendar flow's collaborators.
func NewService(database *gorm.DB, vault *naver.Vault, auth *naver.Service, serializer *Serializer, publisher *Publisher) *Service {
	return &Service{
		db:         database,
		vault:      vault,
		auth:       auth,
		serializer: serializer,
		publisher:  publisher,
	}
}

// AddResult reports a successful publish.
type AddResult struct {
	// Retried is true when the publish succeeded on the post-refresh
	// second attempt.
	Retried bool
	// ProviderResult is the provider's raw response body.
	ProviderResult string
}

// AddEventToCalendar publishes the event to the user's provider
// calendar. Invalid event times fail before any outbound call.
func (s *Service) AddEventToCalendar(ctx context.Context, userID, eventID uint) (*AddResult, error) {
	var user models.User
	if err := s.db.First(&user, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, err
	}

	var event models.Event
	if err := s.db.First(&event, "event_id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "event not found")
		}
		return nil, err
	}

	schedule := ScheduleFromEvent(&event)
	if schedule.StartAt.IsZero() || schedule.EndAt.IsZero() {
		return nil, apperr.New(apperr.KindInvalidEventTime, "event has invalid start or end time")
	}

	accessToken, err := s.vault.AccessToken(&user)
	if err != nil {
		return nil, err
	}

	payload, err := s.serializer.Render(schedule)
	if err != nil {
		return nil, err
	}

	body, err := s.publisher.Publish(ctx, accessToken, payload)
	if err == nil {
		return &AddResult{ProviderResult: body}, nil
	}

	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		// Transport-level failure (timeout, connection error): terminal,
		// same handling as a non-401 rejection.
		return nil, apperr.Wrap(apperr.KindPublishRejected, "calendar publish failed", err)
	}
	if rejection.StatusCode != http.StatusUnauthorized {
		return nil, apperr.Wrap(apperr.KindPublishRejected, "calendar publish was rejected by the provider", rejection)
	}

	// Credential expired: refresh once and retry once with a freshly
	// rendered payload (new UID). Any failure past this point is
	// terminal and asks the caller to re-link.
	log.Printf("access token rejected for %s, refreshing and retrying once", user.Email)

	newAccess, err := s.auth.RefreshAccessToken(ctx, &user)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRefreshRetryFailed, "token refresh failed, please re-link your account", err)
	}

	retryPayload, err := s.serializer.Render(schedule)
	if err != nil {
		return nil, err
	}

	body, err = s.publisher.Publish(ctx, newAccess, retryPayload)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRefreshRetryFailed, "publish still failing after token refresh, please re-link your account", err)
	}

	return &AddResult{Retried: true, ProviderResult: body}, nil
}
