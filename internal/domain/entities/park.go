package entities

// Park size buckets used by the recommendation scorer.
const (
	ParkSizeSmall  = "small"
	ParkSizeMedium = "medium"
	ParkSizeLarge  = "large"
)

// Park represents an NYC park from the Parks Properties dataset.
// AvgRating is denormalized and maintained exclusively by the review
// adapter; nil means the park has no qualifying reviews yet.
type Park struct {
	ID           string      `json:"park_id" db:"park_id"`
	Name         string      `json:"park_name" db:"park_name"`
	Borough      string      `json:"borough" db:"borough"`
	ZipCode      string      `json:"zipcode,omitempty" db:"zipcode"`
	Latitude     float64     `json:"latitude" db:"latitude"`
	Longitude    float64     `json:"longitude" db:"longitude"`
	ParkType     string      `json:"park_type" db:"park_type"`
	Acres        *float64    `json:"acres" db:"acres"`
	IsWaterfront bool        `json:"is_waterfront" db:"is_waterfront"`
	AvgRating    *float64    `json:"avg_rating" db:"avg_rating"`
	Facilities   []*Facility `json:"facilities,omitempty" db:"-"`
	Trails       []*Trail    `json:"trails,omitempty" db:"-"`
	Reviews      []*Review   `json:"reviews,omitempty" db:"-"`
}

// SizeBucket buckets the park by acreage. Parks with unknown acreage fall
// into the medium bucket since neither threshold is crossed.
func (p *Park) SizeBucket() string {
	if p.Acres == nil {
		return ParkSizeMedium
	}
	switch {
	case *p.Acres < 5:
		return ParkSizeSmall
	case *p.Acres > 50:
		return ParkSizeLarge
	default:
		return ParkSizeMedium
	}
}

// Rating returns the denormalized average rating, or 0 when unrated.
func (p *Park) Rating() float64 {
	if p.AvgRating == nil {
		return 0
	}
	return *p.AvgRating
}

// FacilityTypes returns the distinct facility types present in the park.
func (p *Park) FacilityTypes() []string {
	seen := make(map[string]struct{}, len(p.Facilities))
	types := make([]string, 0, len(p.Facilities))
	for _, f := range p.Facilities {
		if _, ok := seen[f.FacilityType]; ok {
			continue
		}
		seen[f.FacilityType] = struct{}{}
		types = append(types, f.FacilityType)
	}
	return types
}

// Trail represents a pedestrian path within a park. Trails are descriptive
// only and never scored.
type Trail struct {
	ID      int64  `json:"trail_id" db:"trail_id"`
	ParkID  string `json:"park_id" db:"park_id"`
	Name    string `json:"trail_name" db:"trail_name"`
	WidthFt string `json:"width_ft,omitempty" db:"width_ft"`
	Surface string `json:"surface,omitempty" db:"surface"`
}
