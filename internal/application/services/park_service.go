package services

import (
	"context"
	"log"
	"strings"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
)

// ParkService handles business logic for the park catalog
type ParkService struct {
	repo       repositories.ParkRepository
	searchRepo repositories.ParkSearchRepository
}

// NewParkService creates a new park service
func NewParkService(repo repositories.ParkRepository, searchRepo repositories.ParkSearchRepository) *ParkService {
	return &ParkService{
		repo:       repo,
		searchRepo: searchRepo,
	}
}

// Create creates a new park and indexes it (seed path)
func (s *ParkService) Create(ctx context.Context, park *entities.Park) error {
	if err := s.repo.Create(ctx, park); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Index(ctx, park); err != nil {
			// Log but don't fail the request (eventual consistency)
			log.Printf("Warning: Failed to index park %s: %v", park.ID, err)
		}
	}

	return nil
}

// GetByID retrieves a park with facilities, trails, and recent reviews
func (s *ParkService) GetByID(ctx context.Context, id string) (*entities.Park, error) {
	parks, err := s.repo.GetByIDsDetailed(ctx, []string{id}, detailedReviewLimit)
	if err != nil {
		return nil, err
	}
	if len(parks) == 0 {
		return s.repo.GetByID(ctx, id)
	}
	return parks[0], nil
}

// List retrieves parks matching the filter
func (s *ParkService) List(ctx context.Context, filter repositories.ParkFilter) ([]*entities.Park, error) {
	return s.repo.List(ctx, filter)
}

// TopRatedByBorough retrieves the highest-rated parks in a borough
func (s *ParkService) TopRatedByBorough(ctx context.Context, borough string, limit int) ([]*entities.Park, error) {
	return s.repo.TopRatedByBorough(ctx, borough, limit)
}

// Statistics computes review statistics for a park
func (s *ParkService) Statistics(ctx context.Context, id string) (*entities.ParkStatistics, error) {
	return s.repo.Statistics(ctx, id)
}

// Search searches parks by name through the search index
func (s *ParkService) Search(ctx context.Context, query string, limit int) ([]*entities.Park, error) {
	if s.searchRepo != nil {
		return s.searchRepo.Search(ctx, query, limit)
	}

	// No index configured: fall back to a name scan over the catalog
	parks, err := s.repo.List(ctx, repositories.ParkFilter{})
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	matched := make([]*entities.Park, 0, limit)
	for _, park := range parks {
		if needle == "" || strings.Contains(strings.ToLower(park.Name), needle) {
			matched = append(matched, park)
			if len(matched) >= limit {
				break
			}
		}
	}
	return matched, nil
}
