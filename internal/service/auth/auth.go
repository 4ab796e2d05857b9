package auth

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepo interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	UpsertIdentity(ctx context.Context, claims models.IdentityClaims, role string) (*models.User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role string) error
	DeleteByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

type tokenVerifier interface {
	Verify(token string) (*models.IdentityClaims, error)
}

type AuthService struct {
	log           logger.Log
	verifier      tokenVerifier
	userRepo      userRepo
	adminIDs      map[string]struct{}
	webhookSecret []byte
}

func NewAuthService(l logger.Log, verifier tokenVerifier, uRepo userRepo, adminExternalIDs []string, webhookSecret string) *AuthService {
	admins := make(map[string]struct{}, len(adminExternalIDs))
	for _, id := range adminExternalIDs {
		admins[id] = struct{}{}
	}
	return &AuthService{
		log:           l,
		verifier:      verifier,
		userRepo:      uRepo,
		adminIDs:      admins,
		webhookSecret: []byte(webhookSecret),
	}
}

func (s *AuthService) roleFor(externalID string) string {
	if _, ok := s.adminIDs[externalID]; ok {
		return models.AdminRole
	}
	return models.UserRole
}

// Authenticate resolves a session token to the stored user, provisioning the
// user on first sight. The role always comes from the stored document.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.UserByExternalID(ctx, claims.ExternalID)
	if errors.Is(err, app_errors.ErrUserNotFound) {
		user, err = s.userRepo.UpsertIdentity(ctx, *claims, s.roleFor(claims.ExternalID))
		if err == nil {
			s.log.Info("provisioned user from session token", "user_id", user.ID.Hex())
		}
	}
	if err != nil {
		return nil, err
	}

	if s.roleFor(user.ExternalID) == models.AdminRole && user.Role != models.AdminRole {
		if err := s.userRepo.SetRole(ctx, user.ID, models.AdminRole); err != nil {
			return nil, err
		}
		user.Role = models.AdminRole
	}
	return user, nil
}

func (s *AuthService) User(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.userRepo.UserByID(ctx, id)
}
