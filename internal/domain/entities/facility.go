package entities

// FacilityTypes enumerates the sport facility categories from the source
// dataset. Kept as strings rather than a dedicated type so preference
// profiles (stored JSON) compare directly.
var FacilityTypes = []string{
	"Basketball", "Tennis", "Soccer", "Baseball", "Softball", "Football",
	"Volleyball", "Track", "Handball", "Pickleball", "Hockey", "Cricket",
	"Rugby", "Bocce", "Lacrosse", "Frisbee", "Kickball", "Netball",
}

// Facility represents a bookable amenity within a park.
// AvgRating excludes zero-rated reviews; TotalReviews counts all of them.
// Both fields are maintained exclusively by the review adapter.
type Facility struct {
	ID             int64    `json:"facility_id" db:"facility_id"`
	ParkID         string   `json:"park_id" db:"park_id"`
	FacilityType   string   `json:"facility_type" db:"facility_type"`
	Dimensions     string   `json:"dimensions,omitempty" db:"dimensions"`
	SurfaceType    string   `json:"surface_type,omitempty" db:"surface_type"`
	IsLighted      bool     `json:"is_lighted" db:"is_lighted"`
	IsAccessible   bool     `json:"is_accessible" db:"is_accessible"`
	FieldCondition string   `json:"field_condition,omitempty" db:"field_condition"`
	AvgRating      *float64 `json:"avg_facility_rating" db:"avg_facility_rating"`
	TotalReviews   int      `json:"total_facility_reviews" db:"total_facility_reviews"`
}

// IsKnownFacilityType reports whether t is one of the dataset categories.
func IsKnownFacilityType(t string) bool {
	for _, known := range FacilityTypes {
		if known == t {
			return true
		}
	}
	return false
}
