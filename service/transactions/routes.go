package transactions

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/anurajthakur333/backend/cmd/models"
	"github.com/anurajthakur333/backend/cmd/utils"
)

// Notifier is told about newly created transactions. Notifications are
// best-effort; failures never surface to the submitting user.
type Notifier interface {
	TransactionCreated(tx models.Transaction)
}

type Handler struct {
	store      Store
	validate   *validator.Validate
	notifier   Notifier
	production bool
}

func NewHandler(store Store, notifier Notifier, production bool) *Handler {
	return &Handler{
		store:      store,
		validate:   validator.New(),
		notifier:   notifier,
		production: production,
	}
}

// RegisterRoutes sets up transaction routes. The search route is registered
// before the {userId} route so "search" is never read as a user id.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	router.HandleFunc("/transactions", h.GetTransactions).Methods("GET")
	router.HandleFunc("/transactions/search/{query}", h.SearchTransactions).Methods("GET")
	router.HandleFunc("/transactions/{userId}", h.GetUserTransactions).Methods("GET")
	router.HandleFunc("/transactions/{id}/status", h.UpdateTransactionStatus).Methods("PUT")
	router.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")
}

type userInfoRequest struct {
	ID       string `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
}

type createTransactionRequest struct {
	PiAmount    float64         `json:"piAmount" validate:"required,gt=0"`
	USDValue    string          `json:"usdValue" validate:"required,numeric"`
	INRValue    string          `json:"inrValue" validate:"required,numeric"`
	UPIID       string          `json:"upiId" validate:"required"`
	ImageURL    string          `json:"imageUrl" validate:"required,url"`
	UserInfo    userInfoRequest `json:"userInfo" validate:"required"`
	SellRateUSD string          `json:"SellRateUsd" validate:"required,numeric"`
	SellRateINR string          `json:"SellRateInr" validate:"required,numeric"`
}

// CreateTransaction persists a new sell request with status pending.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid request payload",
		})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Validation failed",
			"details": validationDetails(err),
		})
		return
	}

	tx := models.Transaction{
		Status:   models.StatusPending,
		PiAmount: req.PiAmount,
		UserInfo: models.UserInfo{
			ID:       req.UserInfo.ID,
			Username: req.UserInfo.Username,
			Email:    req.UserInfo.Email,
			Phone:    req.UserInfo.Phone,
		},
		USDValue:    req.USDValue,
		INRValue:    req.INRValue,
		SellRateUSD: req.SellRateUSD,
		SellRateINR: req.SellRateINR,
		UPIID:       req.UPIID,
		ImageURL:    req.ImageURL,
	}

	if err := h.store.Create(&tx); err != nil {
		logrus.WithError(err).Error("failed to create transaction")
		body := map[string]interface{}{
			"success": false,
			"error":   "Failed to create transaction",
		}
		if !h.production {
			body["details"] = err.Error()
		}
		utils.RespondWithJSON(w, http.StatusInternalServerError, body)
		return
	}

	if h.notifier != nil {
		go h.notifier.TransactionCreated(tx)
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    tx,
	})
}

// GetTransactions returns every transaction, most recent first. There is no
// pagination; the admin dashboard loads the full list.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.store.ListAll()
	if err != nil {
		logrus.WithError(err).Error("failed to list transactions")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, txs)
}

// GetUserTransactions returns the transactions submitted by one user.
func (h *Handler) GetUserTransactions(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	txs, err := h.store.ListByUser(userID)
	if err != nil {
		logrus.WithError(err).WithField("userId", userID).Error("failed to list user transactions")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, txs)
}

// SearchTransactions does a case-insensitive substring match over the
// snapshot email, username and phone.
func (h *Handler) SearchTransactions(w http.ResponseWriter, r *http.Request) {
	query := mux.Vars(r)["query"]

	txs, err := h.store.Search(query)
	if err != nil {
		logrus.WithError(err).WithField("query", query).Error("transaction search failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to search transactions")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, txs)
}

// UpdateTransactionStatus sets a transaction's status to any of the five
// recognised values. No transition table is enforced; admins may move a
// transaction backwards (e.g. completed to pending).
func (h *Handler) UpdateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if !models.ValidStatus(req.Status) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid status value")
		return
	}

	tx, err := h.store.UpdateStatus(id, req.Status)
	if err != nil {
		if err == ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		logrus.WithError(err).WithField("id", id).Error("failed to update transaction status")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, tx)
}

// DeleteTransaction removes a transaction and echoes its prior state.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tx, err := h.store.Delete(id)
	if err != nil {
		if err == ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		logrus.WithError(err).WithField("id", id).Error("failed to delete transaction")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Transaction deleted successfully",
		"transaction": tx,
	})
}

func validationDetails(err error) []map[string]string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []map[string]string{{"error": err.Error()}}
	}

	details := make([]map[string]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		details = append(details, map[string]string{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}
	return details
}
