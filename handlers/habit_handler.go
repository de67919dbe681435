package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"habitQuestAPI/internal/habit"
	"habitQuestAPI/services"
)

type HabitHandler struct {
	habitService *services.HabitService
}

func NewHabitHandler(habitService *services.HabitService) *HabitHandler {
	return &HabitHandler{habitService: habitService}
}

func (h *HabitHandler) GetAllHabits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	habits, err := h.habitService.GetAll(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load habits")
		return
	}

	respondWithJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) GetHabitByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit id")
		return
	}

	found, err := h.habitService.GetByID(ctx, id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}

func (h *HabitHandler) GetHabitsByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	category := mux.Vars(r)["category"]
	habits, err := h.habitService.GetByCategory(ctx, category)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load habits")
		return
	}

	respondWithJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) GetHabitsByDifficulty(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	difficulty := habit.Difficulty(strings.ToUpper(mux.Vars(r)["difficulty"]))
	if !difficulty.Valid() {
		respondWithError(w, http.StatusBadRequest, "Difficulty must be EASY, MEDIUM or HARD")
		return
	}

	habits, err := h.habitService.GetByDifficulty(ctx, difficulty)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load habits")
		return
	}

	respondWithJSON(w, http.StatusOK, habits)
}

// GetRandomHabit picks a random habit of the requested cadence.
// ?exclude= takes a comma-separated list of habit IDs to skip, typically
// the ones the user is already subscribed to.
func (h *HabitHandler) GetRandomHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	cadence := habit.Cadence(strings.ToUpper(r.URL.Query().Get("cadence")))
	if !cadence.Valid() {
		respondWithError(w, http.StatusBadRequest, "cadence must be DAILY or WEEKLY")
		return
	}

	var excludeIDs []uuid.UUID
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "Invalid habit id in exclude list")
				return
			}
			excludeIDs = append(excludeIDs, id)
		}
	}

	found, err := h.habitService.GetRandom(ctx, cadence, excludeIDs)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}
