package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func acresPtr(v float64) *float64 { return &v }

func TestPark_SizeBucket(t *testing.T) {
	tests := []struct {
		name  string
		acres *float64
		want  string
	}{
		{"unknown acreage", nil, ParkSizeMedium},
		{"small", acresPtr(2.3), ParkSizeSmall},
		{"boundary five acres", acresPtr(5), ParkSizeMedium},
		{"medium", acresPtr(30), ParkSizeMedium},
		{"boundary fifty acres", acresPtr(50), ParkSizeMedium},
		{"large", acresPtr(50.1), ParkSizeLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			park := &Park{Acres: tt.acres}
			assert.Equal(t, tt.want, park.SizeBucket())
		})
	}
}

func TestPark_Rating(t *testing.T) {
	unrated := &Park{}
	assert.Equal(t, 0.0, unrated.Rating())

	rating := 4.2
	rated := &Park{AvgRating: &rating}
	assert.Equal(t, 4.2, rated.Rating())
}

func TestPark_FacilityTypes_Deduplicates(t *testing.T) {
	park := &Park{Facilities: []*Facility{
		{FacilityType: "basketball"},
		{FacilityType: "playground"},
		{FacilityType: "basketball"},
	}}

	assert.Equal(t, []string{"basketball", "playground"}, park.FacilityTypes())
}

func TestReview_HasTarget(t *testing.T) {
	parkID := "P001"
	facilityID := int64(7)

	assert.False(t, (&Review{}).HasTarget())
	assert.True(t, (&Review{ParkID: &parkID}).HasTarget())
	assert.True(t, (&Review{FacilityID: &facilityID}).HasTarget())
}
