package repositories

import (
	"time"

	"gorm.io/gorm"

	"paylink_backend/internal/models"
)

type LedgerRepository interface {
	Create(entry *models.LedgerEntry) error
	FindByUser(userID string) ([]models.LedgerEntry, error)
	CountByRequest(requestID string) (int64, error)
	AttachCompletedAt(id string, completedAt time.Time) error
}

type LedgerRepositoryImpl struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &LedgerRepositoryImpl{db: db}
}

func (r *LedgerRepositoryImpl) Create(entry *models.LedgerEntry) error {
	return r.db.Create(entry).Error
}

func (r *LedgerRepositoryImpl) FindByUser(userID string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *LedgerRepositoryImpl) CountByRequest(requestID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.LedgerEntry{}).
		Where("request_id = ?", requestID).
		Count(&count).Error
	return count, err
}

// AttachCompletedAt is the only mutation allowed on a ledger entry.
func (r *LedgerRepositoryImpl) AttachCompletedAt(id string, completedAt time.Time) error {
	return r.db.Model(&models.LedgerEntry{}).
		Where("id = ? AND completed_at IS NULL", id).
		Update("completed_at", completedAt).Error
}
