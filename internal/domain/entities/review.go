package entities

import "time"

// Review is a user-submitted rating and optional comment attached to
// exactly one park or one facility (never neither).
type Review struct {
	ID         string    `json:"review_id" db:"review_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	ParkID     *string   `json:"park_id" db:"park_id"`
	FacilityID *int64    `json:"facility_id" db:"facility_id"`
	Rating     float64   `json:"rating" db:"rating"`
	Comment    string    `json:"comment,omitempty" db:"comment"`
	CreateTime time.Time `json:"create_time" db:"create_time"`
	UpdateTime time.Time `json:"last_update_time" db:"last_update_time"`

	// Username is populated on joined reads for display.
	Username string `json:"username,omitempty" db:"-"`
}

// HasTarget reports whether the review references a park or a facility.
func (r *Review) HasTarget() bool {
	return r.ParkID != nil || r.FacilityID != nil
}

// Review event types published on the event bus after a committed mutation.
const (
	ReviewEventCreated = "review.created"
	ReviewEventUpdated = "review.updated"
	ReviewEventDeleted = "review.deleted"
)

// ReviewEvent is broadcast over Redis Pub/Sub so map clients can refresh
// park ratings without polling.
type ReviewEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ReviewID   string    `json:"review_id"`
	ParkID     *string   `json:"park_id,omitempty"`
	FacilityID *int64    `json:"facility_id,omitempty"`
	Rating     float64   `json:"rating"`
	Timestamp  time.Time `json:"timestamp"`
}
