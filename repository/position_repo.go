package repository

import (
	"context"
	"fmt"

	"planner-bff/dal"
	"planner-bff/models"
	"planner-bff/utils/logger"
)

type PositionRepository struct {
	client dal.BackendClientInterface
	logger logger.Logger
}

func NewPositionRepository(client dal.BackendClientInterface, log logger.Logger) *PositionRepository {
	return &PositionRepository{
		client: client,
		logger: log,
	}
}

func (r *PositionRepository) GetMyPositions(ctx context.Context) (*models.UserPositionsSnapshot, error) {
	var snapshot models.UserPositionsSnapshot
	if err := r.client.Get(ctx, dal.PathMyPositions, nil, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}

	r.logger.Debugf("Fetched %d positions for user %d", len(snapshot.Positions), snapshot.UserID)
	return &snapshot, nil
}
