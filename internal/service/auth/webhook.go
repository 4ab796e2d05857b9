package auth

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

type WebhookEvent struct {
	Type string      `json:"type"`
	Data WebhookUser `json:"data"`
}

type WebhookUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// SignWebhook returns the hex HMAC-SHA256 of payload, as expected in the
// X-Webhook-Signature header.
func SignWebhook(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *AuthService) verifySignature(payload []byte, signature string) error {
	if len(s.webhookSecret) == 0 {
		return fmt.Errorf("%w: webhook secret is not configured", app_errors.ErrInvalidSignature)
	}
	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if err != nil {
		return app_errors.ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, s.webhookSecret)
	mac.Write(payload)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return app_errors.ErrInvalidSignature
	}
	return nil
}

// HandleWebhook applies a signed identity provider event. Unknown event types
// are ignored.
func (s *AuthService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if err := s.verifySignature(payload, signature); err != nil {
		return err
	}

	var ev WebhookEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return app_errors.Invalid("malformed webhook payload")
	}
	if ev.Data.ID == "" {
		return app_errors.Invalid("webhook payload has no user id")
	}

	switch ev.Type {
	case EventUserCreated, EventUserUpdated:
		claims := models.IdentityClaims{
			ExternalID: ev.Data.ID,
			Email:      ev.Data.Email,
			Name:       ev.Data.Name,
			Picture:    ev.Data.ImageURL,
		}
		if _, err := s.userRepo.UpsertIdentity(ctx, claims, s.roleFor(ev.Data.ID)); err != nil {
			return err
		}
	case EventUserDeleted:
		if _, err := s.userRepo.DeleteByExternalID(ctx, ev.Data.ID); err != nil && !errors.Is(err, app_errors.ErrUserNotFound) {
			return err
		}
	default:
		s.log.Debug("ignoring identity webhook", "type", ev.Type)
		return nil
	}
	s.log.Info("identity webhook applied", "type", ev.Type, "external_id", ev.Data.ID)
	return nil
}
