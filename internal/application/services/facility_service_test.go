package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

type stubTrailRepo struct {
	trails map[string][]*entities.Trail
}

func (s *stubTrailRepo) Create(ctx context.Context, trail *entities.Trail) error { return nil }

func (s *stubTrailRepo) ListByPark(ctx context.Context, parkID string) ([]*entities.Trail, error) {
	return s.trails[parkID], nil
}

func newFacilityServiceFixture() *FacilityService {
	facilityRepo := &stubFacilityRepo{existing: map[int64]bool{7: true}}
	trailRepo := &stubTrailRepo{trails: map[string][]*entities.Trail{
		"P001": {{ID: 1, ParkID: "P001", Name: "Loop Trail"}},
	}}
	parkRepo := &stubParkRepo{existing: map[string]bool{"P001": true}}
	return NewFacilityService(facilityRepo, trailRepo, parkRepo)
}

func TestFacilityService_List_RejectsUnknownType(t *testing.T) {
	svc := newFacilityServiceFixture()

	_, err := svc.List(context.Background(), repositories.FacilityFilter{FacilityType: "Quidditch"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestFacilityService_List_KnownTypePasses(t *testing.T) {
	svc := newFacilityServiceFixture()

	_, err := svc.List(context.Background(), repositories.FacilityFilter{FacilityType: "Basketball"})
	assert.NoError(t, err)
}

func TestFacilityService_ListByPark_UnknownPark(t *testing.T) {
	svc := newFacilityServiceFixture()

	_, err := svc.ListByPark(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestFacilityService_ListTrailsByPark(t *testing.T) {
	svc := newFacilityServiceFixture()

	trails, err := svc.ListTrailsByPark(context.Background(), "P001")
	require.NoError(t, err)
	require.Len(t, trails, 1)
	assert.Equal(t, "Loop Trail", trails[0].Name)

	_, err = svc.ListTrailsByPark(context.Background(), "NOPE")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
