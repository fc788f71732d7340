package services

import (
	"context"
	"errors"

	"paylink_backend/internal/appErrors"
	"paylink_backend/internal/models"
	"paylink_backend/internal/repositories"
)

// WalletDirectory resolves a user's receiving address per network.
type WalletDirectory interface {
	ResolveReceivingAddress(ctx context.Context, userID, network string) (string, error)
	SetAddress(ctx context.Context, userID, network, address string) (*models.Wallet, error)
	List(ctx context.Context, userID string) ([]models.Wallet, error)
}

type walletService struct {
	walletRepo repositories.WalletRepository
}

func NewWalletService(walletRepo repositories.WalletRepository) WalletDirectory {
	return &walletService{walletRepo: walletRepo}
}

func (s *walletService) ResolveReceivingAddress(ctx context.Context, userID, network string) (string, error) {
	wallet, err := s.walletRepo.FindByUserAndNetwork(userID, network)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return "", appErrors.ErrNoWallet
		}
		return "", appErrors.DatabaseError(err)
	}
	return wallet.Address, nil
}

func (s *walletService) SetAddress(ctx context.Context, userID, network, address string) (*models.Wallet, error) {
	wallet := &models.Wallet{
		UserID:  userID,
		Network: network,
		Address: address,
	}
	wallet.ID = newID()
	if err := s.walletRepo.Upsert(wallet); err != nil {
		return nil, appErrors.DatabaseError(err)
	}
	return wallet, nil
}

func (s *walletService) List(ctx context.Context, userID string) ([]models.Wallet, error) {
	wallets, err := s.walletRepo.FindByUser(userID)
	if err != nil {
		return nil, appErrors.DatabaseError(err)
	}
	return wallets, nil
}
