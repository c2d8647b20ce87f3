package repository

import (
	"context"
	"fmt"

	"planner-bff/dal"
	"planner-bff/models"
	"planner-bff/utils/logger"
)

type AuthRepository struct {
	client dal.BackendClientInterface
	logger logger.Logger
}

func NewAuthRepository(client dal.BackendClientInterface, log logger.Logger) *AuthRepository {
	return &AuthRepository{
		client: client,
		logger: log,
	}
}

// Login posts the credentials; the backend answers with the profile and sets its session cookie
func (r *AuthRepository) Login(ctx context.Context, creds models.Credentials) (*models.UserProfile, error) {
	r.logger.Infof("Logging in user: %s", creds.Email)

	var profile models.UserProfile
	if err := r.client.Post(ctx, dal.PathLogin, creds, &profile); err != nil {
		return nil, err
	}

	if profile.ID == 0 && profile.Email == "" {
		return nil, fmt.Errorf("backend login returned an empty profile")
	}
	return &profile, nil
}

func (r *AuthRepository) Logout(ctx context.Context) error {
	return r.client.Post(ctx, dal.PathLogout, nil, nil)
}

// Status asks the backend whether the cookie session is still valid
func (r *AuthRepository) Status(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.client.Get(ctx, dal.PathAuthStatus, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
