package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"habitQuestAPI/internal/completion"
	"habitQuestAPI/middleware"
	"habitQuestAPI/services"
)

// UserHabitHandler serves a user's habit subscriptions: accept, list,
// remove, complete, and the weekly completions view.
type UserHabitHandler struct {
	accountService      *services.AccountService
	habitService        *services.HabitService
	subscriptionService *services.SubscriptionService
	progressionService  *services.ProgressionService
}

func NewUserHabitHandler(
	accountService *services.AccountService,
	habitService *services.HabitService,
	subscriptionService *services.SubscriptionService,
	progressionService *services.ProgressionService,
) *UserHabitHandler {
	return &UserHabitHandler{
		accountService:      accountService,
		habitService:        habitService,
		subscriptionService: subscriptionService,
		progressionService:  progressionService,
	}
}

func (h *UserHabitHandler) GetUserHabits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	acct, err := h.accountService.FindByClerkID(ctx, clerkID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	subs, err := h.subscriptionService.ListActive(ctx, acct.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load habits")
		return
	}

	respondWithJSON(w, http.StatusOK, subs)
}

func (h *UserHabitHandler) AcceptHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := uuid.Parse(mux.Vars(r)["habitId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit id")
		return
	}

	acct, err := h.accountService.FindByClerkID(ctx, clerkID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	def, err := h.habitService.GetByID(ctx, habitID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	sub, err := h.subscriptionService.Accept(ctx, acct.ID, def)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	log.Printf("AcceptHabit: user %s accepted habit %q", clerkID, def.Name)
	respondWithJSON(w, http.StatusCreated, sub)
}

func (h *UserHabitHandler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := uuid.Parse(mux.Vars(r)["habitId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit id")
		return
	}

	sub, err := h.progressionService.CompleteHabit(ctx, clerkID, habitID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sub)
}

func (h *UserHabitHandler) RemoveHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, err := uuid.Parse(mux.Vars(r)["habitId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit id")
		return
	}

	acct, err := h.accountService.FindByClerkID(ctx, clerkID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	if err := h.subscriptionService.Remove(ctx, acct.ID, habitID); err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Habit removed"})
}

// GetWeeklyCompletions returns the ledger entries for the ISO week
// containing ?date= (defaults to today). Monday and Sunday anchors
// yield the same window.
func (h *UserHabitHandler) GetWeeklyCompletions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	anchor := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(completion.ISODate, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		anchor = parsed
	}

	records, err := h.progressionService.GetWeeklyCompletions(ctx, clerkID, anchor)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, records)
}
