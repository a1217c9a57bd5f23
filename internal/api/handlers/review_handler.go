package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/findmypark/findmypark-nyc/internal/application/services"
	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

type reviewRequest struct {
	UserID     int64    `json:"user_id"`
	ParkID     *string  `json:"park_id"`
	FacilityID *int64   `json:"facility_id"`
	Rating     *float64 `json:"rating"`
	Comment    string   `json:"comment"`
}

func (req *reviewRequest) toEntity() *entities.Review {
	review := &entities.Review{
		UserID:     req.UserID,
		ParkID:     req.ParkID,
		FacilityID: req.FacilityID,
		Comment:    req.Comment,
	}
	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	return review
}

// CreateReview handles POST /api/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Rating == nil {
		respondWithError(w, http.StatusBadRequest, "rating is required")
		return
	}

	review, err := h.reviewService.Create(r.Context(), req.toEntity())
	if err != nil {
		handleServiceError(w, err, "failed to create review")
		return
	}

	respondWithJSON(w, http.StatusCreated, review)
}

// CreateReviewBatch handles POST /api/reviews/batch
func (h *ReviewHandler) CreateReviewBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reviews []reviewRequest `json:"reviews"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reviews := make([]*entities.Review, len(req.Reviews))
	for i := range req.Reviews {
		reviews[i] = req.Reviews[i].toEntity()
	}

	result, err := h.reviewService.CreateBatch(r.Context(), reviews)
	if err != nil {
		handleServiceError(w, err, "failed to create reviews")
		return
	}

	// 207 when some items failed, 201 when all succeeded
	status := http.StatusCreated
	if len(result.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	respondWithJSON(w, status, result)
}

// GetReview handles GET /api/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	reviewID := r.PathValue("id")
	if reviewID == "" {
		respondWithError(w, http.StatusBadRequest, "review ID is required")
		return
	}

	review, err := h.reviewService.GetByID(r.Context(), reviewID)
	if err != nil {
		handleServiceError(w, err, "failed to get review")
		return
	}

	respondWithJSON(w, http.StatusOK, review)
}

// UpdateReview handles PUT /api/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewID := r.PathValue("id")
	if reviewID == "" {
		respondWithError(w, http.StatusBadRequest, "review ID is required")
		return
	}

	var req struct {
		Rating     *float64 `json:"rating"`
		Comment    *string  `json:"comment"`
		ParkID     *string  `json:"park_id"`
		FacilityID *int64   `json:"facility_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.Update(r.Context(), reviewID, repositories.ReviewPatch{
		Rating:     req.Rating,
		Comment:    req.Comment,
		ParkID:     req.ParkID,
		FacilityID: req.FacilityID,
	})
	if err != nil {
		handleServiceError(w, err, "failed to update review")
		return
	}

	respondWithJSON(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /api/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID := r.PathValue("id")
	if reviewID == "" {
		respondWithError(w, http.StatusBadRequest, "review ID is required")
		return
	}

	review, err := h.reviewService.Delete(r.Context(), reviewID)
	if err != nil {
		handleServiceError(w, err, "failed to delete review")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": true,
		"review":  review,
	})
}

// ListParkReviews handles GET /api/parks/{id}/reviews
func (h *ReviewHandler) ListParkReviews(w http.ResponseWriter, r *http.Request) {
	parkID := r.PathValue("id")
	if parkID == "" {
		respondWithError(w, http.StatusBadRequest, "park ID is required")
		return
	}
	limit := parseIntParam(r.URL.Query().Get("limit"), 50)

	reviews, err := h.reviewService.ListByPark(r.Context(), parkID, limit)
	if err != nil {
		handleServiceError(w, err, "failed to list park reviews")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"park_id": parkID,
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// ListFacilityReviews handles GET /api/facilities/{id}/reviews
func (h *ReviewHandler) ListFacilityReviews(w http.ResponseWriter, r *http.Request) {
	facilityID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "facility ID must be an integer")
		return
	}
	limit := parseIntParam(r.URL.Query().Get("limit"), 50)

	reviews, err := h.reviewService.ListByFacility(r.Context(), facilityID, limit)
	if err != nil {
		handleServiceError(w, err, "failed to list facility reviews")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facility_id": facilityID,
		"reviews":     reviews,
		"count":       len(reviews),
	})
}

// ListUserReviews handles GET /api/users/{id}/reviews
func (h *ReviewHandler) ListUserReviews(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "user ID must be an integer")
		return
	}
	limit := parseIntParam(r.URL.Query().Get("limit"), 50)

	reviews, err := h.reviewService.ListByUser(r.Context(), userID, limit)
	if err != nil {
		handleServiceError(w, err, "failed to list user reviews")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"reviews": reviews,
		"count":   len(reviews),
	})
}
