package services

import (
	"context"

	"paylink_backend/internal/appErrors"
	"paylink_backend/internal/models"
	"paylink_backend/internal/repositories"
)

type LedgerService interface {
	List(ctx context.Context, userID string) ([]models.LedgerEntry, error)
}

type ledgerService struct {
	ledgerRepo repositories.LedgerRepository
}

func NewLedgerService(ledgerRepo repositories.LedgerRepository) LedgerService {
	return &ledgerService{ledgerRepo: ledgerRepo}
}

func (s *ledgerService) List(ctx context.Context, userID string) ([]models.LedgerEntry, error) {
	entries, err := s.ledgerRepo.FindByUser(userID)
	if err != nil {
		return nil, appErrors.DatabaseError(err)
	}
	return entries, nil
}
