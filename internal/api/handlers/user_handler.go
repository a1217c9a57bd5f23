package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/findmypark/findmypark-nyc/internal/application/services"
	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
)

// UserHandler handles user profile, preference, and favorite HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterUser handles POST /api/users
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.userService.Register(r.Context(), req.Username, req.Email)
	if err != nil {
		handleServiceError(w, err, "failed to register user")
		return
	}

	respondWithJSON(w, http.StatusCreated, profile)
}

// GetUser handles GET /api/users/{username}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		respondWithError(w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), username)
	if err != nil {
		handleServiceError(w, err, "failed to get user")
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// GetPreferences handles GET /api/users/{username}/preferences
func (h *UserHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		respondWithError(w, http.StatusBadRequest, "username is required")
		return
	}

	prefs, err := h.userService.GetPreferences(r.Context(), username)
	if err != nil {
		handleServiceError(w, err, "failed to get preferences")
		return
	}

	respondWithJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences handles PUT /api/users/{username}/preferences
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		respondWithError(w, http.StatusBadRequest, "username is required")
		return
	}

	var prefs entities.PreferenceProfile
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.userService.UpdatePreferences(r.Context(), username, &prefs)
	if err != nil {
		handleServiceError(w, err, "failed to update preferences")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// GetFavorites handles GET /api/users/{username}/favorites
func (h *UserHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		respondWithError(w, http.StatusBadRequest, "username is required")
		return
	}

	favorites, err := h.userService.GetFavorites(r.Context(), username)
	if err != nil {
		handleServiceError(w, err, "failed to get favorites")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"username":  username,
		"favorites": favorites,
	})
}

// AddFavorite handles POST /api/users/{username}/favorites
func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		respondWithError(w, http.StatusBadRequest, "username is required")
		return
	}

	var req struct {
		ParkID string `json:"park_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ParkID == "" {
		respondWithError(w, http.StatusBadRequest, "park_id is required")
		return
	}

	favorites, err := h.userService.AddFavorite(r.Context(), username, req.ParkID)
	if err != nil {
		handleServiceError(w, err, "failed to add favorite")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"username":  username,
		"favorites": favorites,
	})
}

// RemoveFavorite handles DELETE /api/users/{username}/favorites/{parkId}
func (h *UserHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	parkID := r.PathValue("parkId")
	if username == "" || parkID == "" {
		respondWithError(w, http.StatusBadRequest, "username and park ID are required")
		return
	}

	favorites, err := h.userService.RemoveFavorite(r.Context(), username, parkID)
	if err != nil {
		handleServiceError(w, err, "failed to remove favorite")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"username":  username,
		"favorites": favorites,
	})
}
