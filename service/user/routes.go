package user

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/anurajthakur333/backend/cmd/utils"
	"github.com/anurajthakur333/backend/cmd/worker"
	"github.com/anurajthakur333/backend/service/transactions"
)

const deleteRetries = 3

type Handler struct {
	identity IdentityClient
	store    transactions.Store
	pool     *worker.Pool

	// delay between cascade retries, shortened in tests
	retryDelay time.Duration
}

func NewHandler(identity IdentityClient, store transactions.Store, pool *worker.Pool) *Handler {
	return &Handler{
		identity:   identity,
		store:      store,
		pool:       pool,
		retryDelay: 2 * time.Second,
	}
}

// RegisterRoutes sets up user-related routes. Deletion requires a valid
// identity-provider session.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users/{id}", utils.AuthMiddleware(h.DeleteUser)).Methods("DELETE")
}

// DeleteUser removes the account from the identity provider and then purges
// the user's transactions. The provider call is the gate: when it fails no
// transaction is touched. The purge itself runs in the background with
// at-least-once retries, so a transient database error after a successful
// provider delete does not strand the records.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	if err := h.identity.DeleteUser(userID); err != nil {
		logrus.WithError(err).WithField("userId", userID).Error("identity provider deletion failed")
		utils.RespondWithJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Failed to delete user",
			"error":   err.Error(),
		})
		return
	}

	h.pool.Submit(func() {
		h.purgeTransactions(userID)
	})

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "User and associated transactions deleted successfully",
	})
}

func (h *Handler) purgeTransactions(userID string) {
	var lastErr error
	for attempt := 1; attempt <= deleteRetries; attempt++ {
		count, err := h.store.DeleteByUser(userID)
		if err == nil {
			logrus.WithFields(logrus.Fields{
				"userId": userID,
				"count":  count,
			}).Info("deleted user transactions")
			return
		}
		lastErr = err
		time.Sleep(h.retryDelay * time.Duration(attempt))
	}
	logrus.WithError(lastErr).WithField("userId", userID).
		Error("failed to delete user transactions after retries; records are orphaned")
}
