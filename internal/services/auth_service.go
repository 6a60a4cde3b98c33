package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/repositories/casdoor"
	"github.com/spk-college/techfest-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	client    *casdoorsdk.Client
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, cfg casdoor.CasdoorConfig, logger *slog.Logger, validator *validator.Validator) AuthService {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)

	return &authService{
		repo:      repo,
		client:    client,
		logger:    logger,
		validator: validator,
	}
}

// SignUp creates the directory account and the local profile. New accounts
// always start as participants; promotions go through the admin user API.
func (s *authService) SignUp(ctx context.Context, req *SignUpRequest) (*UserResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.Identity().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if exists {
		return nil, NewBusinessRuleError("email_taken", "an account with this email already exists")
	}

	accountName := accountNameFromEmail(req.Email)
	id, err := s.repo.Identity().AddUser(ctx, accountName, req.DisplayName, req.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	user := &models.User{
		ID:          id,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        models.RoleParticipant,
	}

	if err := s.repo.Users().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("User signed up", "user_id", id, "email", req.Email)
	return &UserResponse{User: user}, nil
}

// SignIn completes the OAuth code exchange and mirrors the profile on first
// sign-in (e.g. accounts created directly in the provider's console).
func (s *authService) SignIn(ctx context.Context, req *SignInRequest) (*SignInResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	token, err := s.client.GetOAuthToken(req.Code, req.State)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	claims, err := s.client.ParseJwtToken(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	user, err := s.mirrorProfile(ctx, &claims.User)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User signed in", "user_id", user.ID)
	return &SignInResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		User:         &UserResponse{User: user, CanEdit: true},
	}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}

		// Token is valid but no profile row exists yet; mirror it from the
		// directory.
		identity, idErr := s.repo.Identity().GetByID(ctx, userID)
		if idErr != nil {
			if repositories.IsNotFoundError(idErr) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to load identity: %w", idErr)
		}

		user = identity
		if createErr := s.repo.Users().Create(ctx, user); createErr != nil {
			return nil, fmt.Errorf("failed to mirror profile: %w", createErr)
		}
	}

	return &UserResponse{User: user, CanEdit: true}, nil
}

// Logout drops server-side cached profile state. Token revocation is the
// provider's concern; we only make sure the next request re-resolves the
// profile from the database.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.repo.Users().EvictCache(ctx, userID); err != nil {
		return fmt.Errorf("failed to evict cached profile: %w", err)
	}

	s.logger.Info("User signed out", "user_id", userID)
	return nil
}

// mirrorProfile returns the local profile for a directory account, creating
// it as a participant on first contact.
func (s *authService) mirrorProfile(ctx context.Context, account *casdoorsdk.User) (*models.User, error) {
	user, err := s.repo.Users().GetByID(ctx, account.Id)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var photoURL *string
	if account.Avatar != "" {
		photoURL = &account.Avatar
	}

	user = &models.User{
		ID:          account.Id,
		DisplayName: account.DisplayName,
		Email:       account.Email,
		PhotoURL:    photoURL,
		Role:        models.RoleParticipant,
	}

	if err := s.repo.Users().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to mirror profile: %w", err)
	}

	s.logger.Info("Profile mirrored on first sign-in", "user_id", user.ID)
	return user, nil
}

func accountNameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	return strings.ToLower(strings.ReplaceAll(local, ".", "_"))
}
