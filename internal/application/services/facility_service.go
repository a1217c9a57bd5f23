package services

import (
	"context"
	"fmt"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

// FacilityService handles business logic for facilities and trails
type FacilityService struct {
	repo      repositories.FacilityRepository
	trailRepo repositories.TrailRepository
	parkRepo  repositories.ParkRepository
}

// NewFacilityService creates a new facility service
func NewFacilityService(
	repo repositories.FacilityRepository,
	trailRepo repositories.TrailRepository,
	parkRepo repositories.ParkRepository,
) *FacilityService {
	return &FacilityService{
		repo:      repo,
		trailRepo: trailRepo,
		parkRepo:  parkRepo,
	}
}

// GetByID retrieves a facility by ID
func (s *FacilityService) GetByID(ctx context.Context, id int64) (*entities.Facility, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves facilities matching the filter
func (s *FacilityService) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	if filter.FacilityType != "" && !entities.IsKnownFacilityType(filter.FacilityType) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown facility type: %s", filter.FacilityType))
	}
	return s.repo.List(ctx, filter)
}

// ListByPark retrieves a park's facilities
func (s *FacilityService) ListByPark(ctx context.Context, parkID string) ([]*entities.Facility, error) {
	if err := s.requirePark(ctx, parkID); err != nil {
		return nil, err
	}
	return s.repo.ListByPark(ctx, parkID)
}

// ListTrailsByPark retrieves a park's trails
func (s *FacilityService) ListTrailsByPark(ctx context.Context, parkID string) ([]*entities.Trail, error) {
	if err := s.requirePark(ctx, parkID); err != nil {
		return nil, err
	}
	return s.trailRepo.ListByPark(ctx, parkID)
}

func (s *FacilityService) requirePark(ctx context.Context, parkID string) error {
	exists, err := s.parkRepo.Exists(ctx, parkID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("park with id %s not found", parkID))
	}
	return nil
}
