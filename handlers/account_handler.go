package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"habitQuestAPI/internal/account"
	"habitQuestAPI/internal/progression"
	"habitQuestAPI/middleware"
	"habitQuestAPI/services"
)

type AccountHandler struct {
	accountService     *services.AccountService
	leaderboardService *services.LeaderboardService
}

func NewAccountHandler(accountService *services.AccountService, leaderboardService *services.LeaderboardService) *AccountHandler {
	return &AccountHandler{
		accountService:     accountService,
		leaderboardService: leaderboardService,
	}
}

func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
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

	respondWithJSON(w, http.StatusOK, acct)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req account.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acct, err := h.accountService.UpdateProfileByClerkID(ctx, clerkID, &req)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, acct)
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.accountService.DeleteByClerkID(ctx, clerkID); err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

func (h *AccountHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	if _, ok := middleware.GetClerkID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	entries, err := h.leaderboardService.Top(ctx, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

// Helper functions shared by the handlers package.

func contextWithTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithDomainError maps the progression error taxonomy onto HTTP
// statuses: absent entities are 404, period/duplicate conflicts are 409,
// an exhausted optimistic-write retry is a transient 503.
func respondWithDomainError(w http.ResponseWriter, err error) {
	var dup *progression.AlreadyCompletedError
	switch {
	case errors.Is(err, progression.ErrHabitNotFound),
		errors.Is(err, progression.ErrSubscriptionNotFound),
		errors.Is(err, progression.ErrAccountNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &dup), errors.Is(err, progression.ErrDuplicateSubscription):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, progression.ErrConcurrencyConflict):
		respondWithError(w, http.StatusServiceUnavailable, "Please retry: the record was updated concurrently")
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
