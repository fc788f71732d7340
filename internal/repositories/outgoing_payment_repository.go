package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"paylink_backend/internal/models"
)

var (
	ErrOutgoingPaymentNotFound = errors.New("outgoing payment not found")
)

type OutgoingPaymentRepository interface {
	Create(payment *models.OutgoingPayment) error
	FindByID(id string) (*models.OutgoingPayment, error)
	FindByUser(userID string) ([]models.OutgoingPayment, error)
	FindDue(now time.Time) ([]models.OutgoingPayment, error)
	ExistsForRequest(requestID string) (bool, error)

	// ClaimForProcessing transitions scheduled -> processing; false means
	// another cycle already claimed the row.
	ClaimForProcessing(id string) (bool, error)
	MarkCompleted(id string, txHash string, executedAt time.Time) (bool, error)
	MarkFailed(id string, errorMessage string) (bool, error)
}

type OutgoingPaymentRepositoryImpl struct {
	db *gorm.DB
}

func NewOutgoingPaymentRepository(db *gorm.DB) OutgoingPaymentRepository {
	return &OutgoingPaymentRepositoryImpl{db: db}
}

func (r *OutgoingPaymentRepositoryImpl) Create(payment *models.OutgoingPayment) error {
	return r.db.Create(payment).Error
}

func (r *OutgoingPaymentRepositoryImpl) FindByID(id string) (*models.OutgoingPayment, error) {
	var payment models.OutgoingPayment
	err := r.db.First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOutgoingPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *OutgoingPaymentRepositoryImpl) FindByUser(userID string) ([]models.OutgoingPayment, error) {
	var payments []models.OutgoingPayment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *OutgoingPaymentRepositoryImpl) FindDue(now time.Time) ([]models.OutgoingPayment, error) {
	var payments []models.OutgoingPayment
	err := r.db.
		Where("status = ? AND scheduled_at <= ?", models.OutgoingStatusScheduled, now).
		Find(&payments).Error
	return payments, err
}

func (r *OutgoingPaymentRepositoryImpl) ExistsForRequest(requestID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.OutgoingPayment{}).
		Where("request_id = ?", requestID).
		Count(&count).Error
	return count > 0, err
}

func (r *OutgoingPaymentRepositoryImpl) ClaimForProcessing(id string) (bool, error) {
	res := r.db.Model(&models.OutgoingPayment{}).
		Where("id = ? AND status = ?", id, models.OutgoingStatusScheduled).
		Update("status", models.OutgoingStatusProcessing)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *OutgoingPaymentRepositoryImpl) MarkCompleted(id string, txHash string, executedAt time.Time) (bool, error) {
	res := r.db.Model(&models.OutgoingPayment{}).
		Where("id = ? AND status = ?", id, models.OutgoingStatusProcessing).
		Updates(map[string]interface{}{
			"status":      models.OutgoingStatusCompleted,
			"tx_hash":     txHash,
			"executed_at": executedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *OutgoingPaymentRepositoryImpl) MarkFailed(id string, errorMessage string) (bool, error) {
	res := r.db.Model(&models.OutgoingPayment{}).
		Where("id = ? AND status IN ?", id, []models.OutgoingStatus{models.OutgoingStatusScheduled, models.OutgoingStatusProcessing}).
		Updates(map[string]interface{}{
			"status":        models.OutgoingStatusFailed,
			"error_message": errorMessage,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
