package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction statuses. Any status may be set from any other; the admin
// dashboard drives the lifecycle and no transition table is enforced here.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusCompleted  = "completed"
)

// Statuses lists every value UpdateStatus accepts.
var Statuses = []string{
	StatusPending,
	StatusProcessing,
	StatusApproved,
	StatusRejected,
	StatusCompleted,
}

// ValidStatus reports whether s is one of the five transaction statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// UserInfo is a snapshot of the submitting user's identity, copied into the
// transaction at creation time. It is intentionally not kept in sync with the
// identity provider afterwards.
type UserInfo struct {
	ID       string `gorm:"column:user_id;type:text;not null;index" json:"id"`
	Username string `gorm:"column:user_username;type:text;not null" json:"username"`
	Email    string `gorm:"column:user_email;type:text;not null" json:"email"`
	Phone    string `gorm:"column:user_phone;type:text;not null" json:"phone"`
}

type Transaction struct {
	ID       string   `gorm:"primaryKey;type:uuid" json:"id"`
	Status   string   `gorm:"column:status;type:text;not null;default:pending" json:"status"`
	UserInfo UserInfo `gorm:"embedded" json:"userInfo"`
	PiAmount float64  `gorm:"column:pi_amount;not null" json:"piAmount"`

	// Monetary values and rates are carried as exact-decimal strings so they
	// survive the round trip without floating-point drift.
	USDValue    string `gorm:"column:usd_value;type:text;not null" json:"usdValue"`
	INRValue    string `gorm:"column:inr_value;type:text;not null" json:"inrValue"`
	SellRateUSD string `gorm:"column:sell_rate_usd;type:text;not null" json:"SellRateUsd"`
	SellRateINR string `gorm:"column:sell_rate_inr;type:text;not null" json:"SellRateInr"`

	UPIID    string `gorm:"column:upi_id;type:text;not null" json:"upiId"`
	ImageURL string `gorm:"column:image_url;type:text;not null" json:"imageUrl"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	return nil
}
