package entities

import (
	"encoding/json"
	"time"
)

// User represents a registered user. Preferences and Favorites are stored
// as JSON text columns; both are parsed leniently on read.
type User struct {
	ID          int64     `json:"user_id" db:"user_id"`
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	Preferences string    `json:"-" db:"preferences"`
	Favorites   string    `json:"-" db:"favorites"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// PreferenceProfile holds a user's stored recommendation preferences.
// Nil pointer fields mean "no preference stated", which the scorer treats
// as a neutral baseline rather than a mismatch.
type PreferenceProfile struct {
	FavoriteFacilities  []string `json:"favoriteFacilities"`
	PreferredBoroughs   []string `json:"preferredBoroughs"`
	PreferredParkTypes  []string `json:"preferredParkTypes"`
	PreferredWaterfront *bool    `json:"preferredWaterfront"`
	MinRating           float64  `json:"minRating"`
	PreferredSize       *string  `json:"preferredSize"`
}

// DefaultPreferences returns the empty profile used when a user has no
// stored preferences.
func DefaultPreferences() *PreferenceProfile {
	return &PreferenceProfile{
		FavoriteFacilities: []string{},
		PreferredBoroughs:  []string{},
		PreferredParkTypes: []string{},
	}
}

// ParsePreferences decodes a stored preference JSON string. Malformed or
// empty input degrades to the default profile; stored preferences are
// display data, not worth failing a request over.
func ParsePreferences(raw string) *PreferenceProfile {
	if raw == "" {
		return DefaultPreferences()
	}

	var prefs PreferenceProfile
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return DefaultPreferences()
	}

	if prefs.FavoriteFacilities == nil {
		prefs.FavoriteFacilities = []string{}
	}
	if prefs.PreferredBoroughs == nil {
		prefs.PreferredBoroughs = []string{}
	}
	if prefs.PreferredParkTypes == nil {
		prefs.PreferredParkTypes = []string{}
	}
	if prefs.MinRating < 0 {
		prefs.MinRating = 0
	}

	return &prefs
}

// ParseFavorites decodes a stored favorites JSON array, degrading to an
// empty list on malformed input.
func ParseFavorites(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var favorites []string
	if err := json.Unmarshal([]byte(raw), &favorites); err != nil {
		return []string{}
	}
	return favorites
}
