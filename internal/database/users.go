package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/nusaiba/backend/internal/models"
)

const defaultProfilePicture = "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face"

// CreateUserInput carries everything needed to register a local account.
type CreateUserInput struct {
	Username       string
	Name           string
	Email          string
	Phone          string
	Password       string
	Provider       models.Provider
	ProfilePicture string
	CoverPhoto     string
	Bio            string
	Website        string
	Location       string
	Gender         string
}

// SocialProfile is the subset of identity a social provider hands back.
type SocialProfile struct {
	Email          string
	Name           string
	Username       string
	ProfilePicture string
	Provider       models.Provider
}

// CreateUser registers a new user and its credential. The email must be
// unique across users; on conflict nothing is written.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (models.User, error) {
	email := normalizeEmail(input.Email)

	users := getCollection[models.User](ctx, s, keyUsers)
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return models.User{}, ErrUserExists
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := models.User{
		ID:             s.newID(),
		Username:       input.Username,
		Name:           input.Name,
		Email:          email,
		Phone:          input.Phone,
		ProfilePicture: input.ProfilePicture,
		CoverPhoto:     input.CoverPhoto,
		Bio:            input.Bio,
		Website:        input.Website,
		Location:       input.Location,
		Gender:         input.Gender,
		PrivacySettings: models.PrivacySettings{
			ProfileVisibility:  models.VisibilityPublic,
			BioVisibility:      models.VisibilityPublic,
			LocationVisibility: models.VisibilityPublic,
			WebsiteVisibility:  models.VisibilityPublic,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.ProfilePicture == "" {
		user.ProfilePicture = defaultProfilePicture
	}
	if user.Gender == "" {
		user.Gender = "other"
	}

	users = append(users, user)
	setCollection(ctx, s, keyUsers, users)

	provider := input.Provider
	if provider == "" {
		provider = models.ProviderLocal
	}
	credentials := getCollection[models.Credential](ctx, s, keyCredentials)
	credentials = append(credentials, models.Credential{
		UserID:       user.ID,
		Email:        user.Email,
		PasswordHash: hash,
		Provider:     provider,
	})
	setCollection(ctx, s, keyCredentials, credentials)

	return user, nil
}

// GetUserByEmail fetches a user by email address.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	email = normalizeEmail(email)
	for _, u := range getCollection[models.User](ctx, s, keyUsers) {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// GetUserByID fetches a user by id.
func (s *Service) GetUserByID(ctx context.Context, id string) (models.User, error) {
	for _, u := range getCollection[models.User](ctx, s, keyUsers) {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// UpdateUser replaces the stored record matching user.ID. The id and
// creation time are immutable; UpdatedAt is always refreshed.
func (s *Service) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	users := getCollection[models.User](ctx, s, keyUsers)
	for i := range users {
		if users[i].ID != user.ID {
			continue
		}
		user.CreatedAt = users[i].CreatedAt
		user.UpdatedAt = s.now()
		users[i] = user
		setCollection(ctx, s, keyUsers, users)
		return user, nil
	}
	return models.User{}, ErrUserNotFound
}

// AuthenticateUser returns the user whose credential matches the supplied
// password. Every failure mode returns ErrInvalidCredentials.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	for _, cred := range getCollection[models.Credential](ctx, s, keyCredentials) {
		if cred.UserID != user.ID {
			continue
		}
		if s.hasher.Verify(cred.PasswordHash, password) {
			return user, nil
		}
		return models.User{}, ErrInvalidCredentials
	}

	return models.User{}, ErrInvalidCredentials
}

// SocialSignInOrRegister resolves a social login to a local account. It is
// idempotent: an existing user is returned as-is, gaining a provider
// credential with an empty hash if none exists yet; otherwise both user and
// credential are created.
func (s *Service) SocialSignInOrRegister(ctx context.Context, profile SocialProfile) (models.User, error) {
	email := normalizeEmail(profile.Email)

	if existing, err := s.GetUserByEmail(ctx, email); err == nil {
		credentials := getCollection[models.Credential](ctx, s, keyCredentials)
		for _, cred := range credentials {
			if cred.UserID == existing.ID {
				return existing, nil
			}
		}
		credentials = append(credentials, models.Credential{
			UserID:   existing.ID,
			Email:    existing.Email,
			Provider: profile.Provider,
		})
		setCollection(ctx, s, keyCredentials, credentials)
		return existing, nil
	}

	now := s.now()
	user := models.User{
		ID:             s.newID(),
		Username:       profile.Username,
		Name:           profile.Name,
		Email:          email,
		ProfilePicture: profile.ProfilePicture,
		Gender:         "other",
		PrivacySettings: models.PrivacySettings{
			ProfileVisibility:  models.VisibilityPublic,
			BioVisibility:      models.VisibilityPublic,
			LocationVisibility: models.VisibilityPublic,
			WebsiteVisibility:  models.VisibilityPublic,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	users := getCollection[models.User](ctx, s, keyUsers)
	users = append(users, user)
	setCollection(ctx, s, keyUsers, users)

	credentials := getCollection[models.Credential](ctx, s, keyCredentials)
	credentials = append(credentials, models.Credential{
		UserID:   user.ID,
		Email:    user.Email,
		Provider: profile.Provider,
	})
	setCollection(ctx, s, keyCredentials, credentials)

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
