package repository

import (
	"planner-bff/dal"
	"planner-bff/utils/logger"
)

// Repository bundles the backend repositories of one BFF session
type Repository struct {
	Auth     *AuthRepository
	Position *PositionRepository
	Course   *CourseRepository
}

func NewRepository(client dal.BackendClientInterface, log logger.Logger) *Repository {
	return &Repository{
		Auth:     NewAuthRepository(client, log),
		Position: NewPositionRepository(client, log),
		Course:   NewCourseRepository(client, log),
	}
}

func (r *Repository) GetAuthRepository() AuthRepositoryInterface         { return r.Auth }
func (r *Repository) GetPositionRepository() PositionRepositoryInterface { return r.Position }
func (r *Repository) GetCourseRepository() CourseRepositoryInterface     { return r.Course }
