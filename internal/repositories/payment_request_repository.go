package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"paylink_backend/internal/models"
)

var (
	ErrPaymentRequestNotFound = errors.New("payment request not found")
)

type PaymentRequestRepository interface {
	Create(req *models.PaymentRequest) error
	FindByID(id string) (*models.PaymentRequest, error)
	FindByUser(userID string) ([]models.PaymentRequest, error)
	FindByStatus(status models.RequestStatus) ([]models.PaymentRequest, error)
	FindDueScheduled(now time.Time) ([]models.PaymentRequest, error)
	FindDueRefunds(now time.Time) ([]models.PaymentRequest, error)

	// TransitionStatus applies a guarded compare-and-set on the status
	// column. It reports whether the row was actually transitioned; false
	// with a nil error means the request was not in any of the expected
	// statuses (lost race or duplicate delivery).
	TransitionStatus(id string, from []models.RequestStatus, to models.RequestStatus) (bool, error)

	// MarkPaid is the settlement CAS: processing -> payment_received, plus
	// proof reference, paid timestamp and optional refund due time, in a
	// single conditional update.
	MarkPaid(id string, proofRef, payerAddress string, paidAt time.Time, refundDueAt *time.Time) (bool, error)

	UpdateMirrorFields(id string, fields []byte) error
}

type PaymentRequestRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRequestRepository(db *gorm.DB) PaymentRequestRepository {
	return &PaymentRequestRepositoryImpl{db: db}
}

func (r *PaymentRequestRepositoryImpl) Create(req *models.PaymentRequest) error {
	return r.db.Create(req).Error
}

func (r *PaymentRequestRepositoryImpl) FindByID(id string) (*models.PaymentRequest, error) {
	var req models.PaymentRequest
	err := r.db.First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *PaymentRequestRepositoryImpl) FindByUser(userID string) ([]models.PaymentRequest, error) {
	var reqs []models.PaymentRequest
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *PaymentRequestRepositoryImpl) FindByStatus(status models.RequestStatus) ([]models.PaymentRequest, error) {
	var reqs []models.PaymentRequest
	err := r.db.Where("status = ?", status).Find(&reqs).Error
	return reqs, err
}

func (r *PaymentRequestRepositoryImpl) FindDueScheduled(now time.Time) ([]models.PaymentRequest, error) {
	var reqs []models.PaymentRequest
	err := r.db.
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.RequestStatusScheduled, now).
		Find(&reqs).Error
	return reqs, err
}

func (r *PaymentRequestRepositoryImpl) FindDueRefunds(now time.Time) ([]models.PaymentRequest, error) {
	var reqs []models.PaymentRequest
	err := r.db.
		Where("status = ? AND kind = ? AND refund_due_at IS NOT NULL AND refund_due_at <= ?",
			models.RequestStatusPaymentReceived, models.KindAskAndRefund, now).
		Find(&reqs).Error
	return reqs, err
}

func (r *PaymentRequestRepositoryImpl) TransitionStatus(id string, from []models.RequestStatus, to models.RequestStatus) (bool, error) {
	res := r.db.Model(&models.PaymentRequest{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PaymentRequestRepositoryImpl) MarkPaid(id string, proofRef, payerAddress string, paidAt time.Time, refundDueAt *time.Time) (bool, error) {
	res := r.db.Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", id, models.RequestStatusProcessing).
		Updates(map[string]interface{}{
			"status":        models.RequestStatusPaymentReceived,
			"proof_ref":     proofRef,
			"payer_address": payerAddress,
			"paid_at":       paidAt,
			"refund_due_at": refundDueAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PaymentRequestRepositoryImpl) UpdateMirrorFields(id string, fields []byte) error {
	return r.db.Model(&models.PaymentRequest{}).
		Where("id = ?", id).
		Update("mirror_fields", fields).Error
}
