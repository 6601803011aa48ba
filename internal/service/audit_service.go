package service

import (
	"context"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

const defaultLogsLimit uint = 200

// AuditService - доступ на чтение к журналу аудита. Записи о переходах состояний
// пишут сами операции в своих транзакциях; здесь только выборки для API.
type AuditService struct {
	uow     uow.UOW
	logRepo LogRepository
}

func NewAuditService(u uow.UOW) (*AuditService, error) {
	logRepo, logRepoErr := uow.As[LogRepository](u, uow.RepositoryName(repoargs.LogRepoName))
	if logRepoErr != nil {
		return nil, logRepoErr //nolint:wrapcheck
	}
	return &AuditService{
		uow:     u,
		logRepo: logRepo,
	}, nil
}

func (s *AuditService) GetByCustomerID(ctx context.Context, customerID int64, limit uint) ([]domain.Log, error) {
	if limit == 0 {
		limit = defaultLogsLimit
	}
	logs, err := s.logRepo.GetByCustomerID(ctx, customerID, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return logs, nil
}

func (s *AuditService) GetAll(ctx context.Context, limit uint) ([]domain.Log, error) {
	if limit == 0 {
		limit = defaultLogsLimit
	}
	logs, err := s.logRepo.GetAll(ctx, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return logs, nil
}
