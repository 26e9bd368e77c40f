package transactions

import (
	"errors"

	"gorm.io/gorm"

	"github.com/anurajthakur333/backend/cmd/models"
)

// ErrNotFound is returned by store operations addressing a transaction id
// that does not exist.
var ErrNotFound = errors.New("transaction not found")

// Store is the persistence surface of the transaction service. Handlers and
// the user-deletion cascade depend on this interface so tests can stub it.
type Store interface {
	Create(tx *models.Transaction) error
	ListAll() ([]models.Transaction, error)
	ListByUser(userID string) ([]models.Transaction, error)
	Search(query string) ([]models.Transaction, error)
	UpdateStatus(id, status string) (*models.Transaction, error)
	Delete(id string) (*models.Transaction, error)
	DeleteByUser(userID string) (int64, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(tx *models.Transaction) error {
	return s.db.Create(tx).Error
}

func (s *GormStore) ListAll() ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.Order("created_at DESC").Find(&txs).Error
	return txs, err
}

func (s *GormStore) ListByUser(userID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&txs).Error
	return txs, err
}

// Search matches query case-insensitively against the snapshot email,
// username and phone. An empty query matches everything.
func (s *GormStore) Search(query string) ([]models.Transaction, error) {
	var txs []models.Transaction
	pattern := "%" + query + "%"
	err := s.db.
		Where("user_email ILIKE ? OR user_username ILIKE ? OR user_phone ILIKE ?", pattern, pattern, pattern).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

func (s *GormStore) UpdateStatus(id, status string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.db.Model(&tx).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// Delete removes the transaction and returns its prior state.
func (s *GormStore) Delete(id string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.db.Delete(&models.Transaction{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *GormStore) DeleteByUser(userID string) (int64, error) {
	result := s.db.Delete(&models.Transaction{}, "user_id = ?", userID)
	return result.RowsAffected, result.Error
}
