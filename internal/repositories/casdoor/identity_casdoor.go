package casdoor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// IdentityCasdoor is the identity-provider directory. It only knows about
// accounts; role and department come from the local profile mirror, so
// every user read here as RoleParticipant until the profile says otherwise.
type IdentityCasdoor struct {
	client *casdoorsdk.Client
	redis  *redis.Client
	config CasdoorConfig

	cachePrefix string
	cacheTTL    time.Duration
}

func NewIdentityCasdoor(config CasdoorConfig, redisClient *redis.Client) repositories.IdentityRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return &IdentityCasdoor{
		client:      client,
		redis:       redisClient,
		config:      config,
		cachePrefix: "identity:",
		cacheTTL:    15 * time.Minute,
	}
}

func (i *IdentityCasdoor) getCacheKey(key string) string {
	return fmt.Sprintf("%s%s", i.cachePrefix, key)
}

func (i *IdentityCasdoor) getUserFromCache(ctx context.Context, key string) (*models.User, error) {
	if i.redis == nil {
		return nil, nil
	}

	cacheKey := i.getCacheKey(key)
	data, err := i.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}

	return &user, nil
}

func (i *IdentityCasdoor) setUserCache(ctx context.Context, key string, user *models.User) {
	if i.redis == nil {
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		return
	}

	cacheKey := i.getCacheKey(key)
	_ = i.redis.Set(ctx, cacheKey, data, i.cacheTTL).Err()
}

func (i *IdentityCasdoor) invalidateUserCache(ctx context.Context, id, email string) {
	if i.redis == nil {
		return
	}
	_ = i.redis.Del(ctx,
		i.getCacheKey(fmt.Sprintf("id:%s", id)),
		i.getCacheKey(fmt.Sprintf("email:%s", email)),
	).Err()
}

// convertCasdoorUserToModel maps a directory account onto the profile
// shape. Role is always participant here; callers overlay the mirror row.
func (i *IdentityCasdoor) convertCasdoorUserToModel(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	var createdAt, updatedAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}
	if casdoorUser.UpdatedTime != "" {
		updatedAt, _ = time.Parse(time.RFC3339, casdoorUser.UpdatedTime)
	}

	var photoURL *string
	if casdoorUser.Avatar != "" {
		photoURL = &casdoorUser.Avatar
	}

	return &models.User{
		ID:          casdoorUser.Id,
		DisplayName: casdoorUser.DisplayName,
		Email:       casdoorUser.Email,
		PhotoURL:    photoURL,
		Role:        models.RoleParticipant,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// GetByID retrieves a directory account by ID
func (i *IdentityCasdoor) GetByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	if cachedUser, err := i.getUserFromCache(ctx, cacheKey); err == nil && cachedUser != nil {
		return cachedUser, nil
	}

	casdoorUser, err := i.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}

	if casdoorUser == nil {
		return nil, repositories.NotFoundError("identity", id)
	}

	user := i.convertCasdoorUserToModel(casdoorUser)
	i.setUserCache(ctx, cacheKey, user)
	i.setUserCache(ctx, fmt.Sprintf("email:%s", user.Email), user)

	return user, nil
}

// GetByEmail retrieves a directory account by email
func (i *IdentityCasdoor) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	cacheKey := fmt.Sprintf("email:%s", email)
	if cachedUser, err := i.getUserFromCache(ctx, cacheKey); err == nil && cachedUser != nil {
		return cachedUser, nil
	}

	casdoorUser, err := i.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email from Casdoor: %w", err)
	}

	if casdoorUser == nil {
		return nil, repositories.NotFoundError("identity", email)
	}

	user := i.convertCasdoorUserToModel(casdoorUser)
	i.setUserCache(ctx, cacheKey, user)
	i.setUserCache(ctx, fmt.Sprintf("id:%s", user.ID), user)

	return user, nil
}

func (i *IdentityCasdoor) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	casdoorUser, err := i.client.GetUserByEmail(email)
	if err != nil {
		return false, fmt.Errorf("failed to check user by email: %w", err)
	}
	return casdoorUser != nil, nil
}

// AddUser creates the directory account and returns its id.
func (i *IdentityCasdoor) AddUser(ctx context.Context, name, displayName, email, password string) (string, error) {
	id := uuid.NewString()

	newUser := &casdoorsdk.User{
		Owner:             i.config.OrganizationName,
		Name:              name,
		Id:                id,
		DisplayName:       displayName,
		Email:             email,
		Password:          password,
		CreatedTime:       time.Now().UTC().Format(time.RFC3339),
		SignupApplication: i.config.ApplicationName,
	}

	ok, err := i.client.AddUser(newUser)
	if err != nil {
		return "", fmt.Errorf("failed to add user to Casdoor: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("casdoor rejected user creation for %s", email)
	}

	return id, nil
}

func (i *IdentityCasdoor) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	casdoorUser, err := i.client.GetUserByUserId(id)
	if err != nil {
		return fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return repositories.NotFoundError("identity", id)
	}

	casdoorUser.DisplayName = displayName
	ok, err := i.client.UpdateUser(casdoorUser)
	if err != nil {
		return fmt.Errorf("failed to update user in Casdoor: %w", err)
	}
	if !ok {
		return fmt.Errorf("casdoor rejected user update for %s", id)
	}

	i.invalidateUserCache(ctx, id, casdoorUser.Email)
	return nil
}

func (i *IdentityCasdoor) DeleteUser(ctx context.Context, id string) error {
	casdoorUser, err := i.client.GetUserByUserId(id)
	if err != nil {
		return fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return repositories.NotFoundError("identity", id)
	}

	ok, err := i.client.DeleteUser(casdoorUser)
	if err != nil {
		return fmt.Errorf("failed to delete user from Casdoor: %w", err)
	}
	if !ok {
		return fmt.Errorf("casdoor rejected user deletion for %s", id)
	}

	i.invalidateUserCache(ctx, id, casdoorUser.Email)
	return nil
}
