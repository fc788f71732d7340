package repositories

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paylink_backend/internal/models"
)

var ErrWalletNotFound = errors.New("wallet not found")

type WalletRepository interface {
	Upsert(wallet *models.Wallet) error
	FindByUserAndNetwork(userID, network string) (*models.Wallet, error)
	FindByUser(userID string) ([]models.Wallet, error)
}

type WalletRepositoryImpl struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &WalletRepositoryImpl{db: db}
}

func (r *WalletRepositoryImpl) Upsert(wallet *models.Wallet) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "network"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "updated_at"}),
	}).Create(wallet).Error
}

func (r *WalletRepositoryImpl) FindByUserAndNetwork(userID, network string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.First(&wallet, "user_id = ? AND network = ?", userID, network).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *WalletRepositoryImpl) FindByUser(userID string) ([]models.Wallet, error) {
	var wallets []models.Wallet
	err := r.db.Where("user_id = ?", userID).Find(&wallets).Error
	return wallets, err
}
