package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/findmypark/findmypark-nyc/internal/adapters/database"
	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/postgres"
	"github.com/findmypark/findmypark-nyc/pkg/config"
)

// Bulk-imports the NYC parks dataset from a JSON file. Review rows are
// inserted directly, bypassing the transactional review surface, so the
// aggregator is re-run explicitly for every touched park and facility at
// the end.

type seedFile struct {
	Parks   []seedPark   `json:"parks"`
	Users   []seedUser   `json:"users"`
	Reviews []seedReview `json:"reviews"`
}

type seedPark struct {
	ParkID       string         `json:"park_id"`
	ParkName     string         `json:"park_name"`
	Borough      string         `json:"borough"`
	ZipCode      string         `json:"zipcode"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	ParkType     string         `json:"park_type"`
	Acres        *float64       `json:"acres"`
	IsWaterfront bool           `json:"is_waterfront"`
	Facilities   []seedFacility `json:"facilities"`
	Trails       []seedTrail    `json:"trails"`
}

type seedFacility struct {
	FacilityType   string `json:"facility_type"`
	Dimensions     string `json:"dimensions"`
	SurfaceType    string `json:"surface_type"`
	IsLighted      bool   `json:"is_lighted"`
	IsAccessible   bool   `json:"is_accessible"`
	FieldCondition string `json:"field_condition"`
}

type seedTrail struct {
	TrailName string `json:"trail_name"`
	WidthFt   string `json:"width_ft"`
	Surface   string `json:"surface"`
}

type seedUser struct {
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	Preferences json.RawMessage `json:"preferences"`
	Favorites   json.RawMessage `json:"favorites"`
}

type seedReview struct {
	Username string  `json:"username"`
	ParkID   *string `json:"park_id"`
	// Facility reviews reference the facility by park and type since
	// facility IDs are assigned at insert time.
	FacilityPark *string `json:"facility_park_id"`
	FacilityType *string `json:"facility_type"`
	Rating       float64 `json:"rating"`
	Comment      string  `json:"comment"`
	CreateTime   string  `json:"create_time"`
}

func main() {
	var dataPath string
	flag.StringVar(&dataPath, "data", "data/findmypark_dataset.json", "path to the dataset JSON file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()

	raw, err := os.ReadFile(dataPath)
	if err != nil {
		log.Fatalf("Failed to read dataset %s: %v", dataPath, err)
	}
	var data seedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Fatalf("Failed to parse dataset: %v", err)
	}

	ctx := context.Background()
	if err := run(ctx, pgClient, &data); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
}

func run(ctx context.Context, pgClient *postgres.Client, data *seedFile) error {
	parkRepo := database.NewParkAdapter(pgClient)
	facilityRepo := database.NewFacilityAdapter(pgClient)
	trailRepo := database.NewTrailAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)
	reviewRepo := database.NewReviewAdapter(pgClient)

	// facility lookup: "parkID/facilityType" -> first matching facility id
	facilityIDs := make(map[string]int64)

	log.Printf("Importing %d parks", len(data.Parks))
	for i, sp := range data.Parks {
		park := &entities.Park{
			ID:           sp.ParkID,
			Name:         sp.ParkName,
			Borough:      sp.Borough,
			ZipCode:      sp.ZipCode,
			Latitude:     sp.Latitude,
			Longitude:    sp.Longitude,
			ParkType:     sp.ParkType,
			Acres:        sp.Acres,
			IsWaterfront: sp.IsWaterfront,
		}
		if err := parkRepo.Create(ctx, park); err != nil {
			log.Printf("Warning: skipping park %s: %v", sp.ParkID, err)
			continue
		}

		for _, sf := range sp.Facilities {
			facility := &entities.Facility{
				ParkID:         sp.ParkID,
				FacilityType:   sf.FacilityType,
				Dimensions:     sf.Dimensions,
				SurfaceType:    sf.SurfaceType,
				IsLighted:      sf.IsLighted,
				IsAccessible:   sf.IsAccessible,
				FieldCondition: sf.FieldCondition,
			}
			if err := facilityRepo.Create(ctx, facility); err != nil {
				log.Printf("Warning: skipping facility %s/%s: %v", sp.ParkID, sf.FacilityType, err)
				continue
			}
			key := facilityKey(sp.ParkID, sf.FacilityType)
			if _, ok := facilityIDs[key]; !ok {
				facilityIDs[key] = facility.ID
			}
		}

		for _, st := range sp.Trails {
			trail := &entities.Trail{
				ParkID:  sp.ParkID,
				Name:    st.TrailName,
				WidthFt: st.WidthFt,
				Surface: st.Surface,
			}
			if err := trailRepo.Create(ctx, trail); err != nil {
				log.Printf("Warning: skipping trail %s/%s: %v", sp.ParkID, st.TrailName, err)
			}
		}

		if (i+1)%500 == 0 {
			log.Printf("Imported %d/%d parks", i+1, len(data.Parks))
		}
	}

	log.Printf("Importing %d users", len(data.Users))
	userIDs := make(map[string]int64, len(data.Users))
	for _, su := range data.Users {
		user := &entities.User{
			Username:    su.Username,
			Email:       su.Email,
			Preferences: string(su.Preferences),
			Favorites:   string(su.Favorites),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Printf("Warning: skipping user %s: %v", su.Username, err)
			continue
		}
		userIDs[user.Username] = user.ID
	}

	log.Printf("Importing %d reviews", len(data.Reviews))
	touchedParks := make(map[string]struct{})
	touchedFacilities := make(map[int64]struct{})
	imported := 0
	for _, sr := range data.Reviews {
		userID, ok := userIDs[sr.Username]
		if !ok {
			log.Printf("Warning: skipping review by unknown user %s", sr.Username)
			continue
		}
		if sr.Rating < 0 || sr.Rating > 5 {
			log.Printf("Warning: skipping review by %s with rating %.1f", sr.Username, sr.Rating)
			continue
		}

		var facilityID *int64
		if sr.FacilityPark != nil && sr.FacilityType != nil {
			id, ok := facilityIDs[facilityKey(*sr.FacilityPark, *sr.FacilityType)]
			if !ok {
				log.Printf("Warning: skipping review for unknown facility %s/%s", *sr.FacilityPark, *sr.FacilityType)
				continue
			}
			facilityID = &id
		}
		if sr.ParkID == nil && facilityID == nil {
			log.Printf("Warning: skipping review by %s with no target", sr.Username)
			continue
		}

		createTime := time.Now().UTC()
		if sr.CreateTime != "" {
			if parsed, err := time.Parse(time.RFC3339, sr.CreateTime); err == nil {
				createTime = parsed
			}
		}

		// Direct insert, aggregates are recomputed in bulk below
		_, err := pgClient.DB().ExecContext(ctx, `
			INSERT INTO reviews (review_id, user_id, park_id, facility_id, rating, comment, create_time, last_update_time)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $7)`,
			uuid.New().String(), userID, sr.ParkID, facilityID, sr.Rating, sr.Comment, createTime,
		)
		if err != nil {
			log.Printf("Warning: skipping review by %s: %v", sr.Username, err)
			continue
		}
		imported++

		if sr.ParkID != nil {
			touchedParks[*sr.ParkID] = struct{}{}
		}
		if facilityID != nil {
			touchedFacilities[*facilityID] = struct{}{}
		}
	}
	log.Printf("Imported %d reviews", imported)

	log.Printf("Recomputing aggregates for %d parks and %d facilities", len(touchedParks), len(touchedFacilities))
	for parkID := range touchedParks {
		if err := reviewRepo.RecomputeParkRating(ctx, parkID); err != nil {
			return fmt.Errorf("recompute park %s: %w", parkID, err)
		}
	}
	for facilityID := range touchedFacilities {
		if err := reviewRepo.RecomputeFacilityRating(ctx, facilityID); err != nil {
			return fmt.Errorf("recompute facility %d: %w", facilityID, err)
		}
	}

	log.Println("Seed complete")
	return nil
}

func facilityKey(parkID, facilityType string) string {
	return parkID + "/" + facilityType
}
