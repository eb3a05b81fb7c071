package usecase

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

// 管理者向けの監査ログ参照
type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
	log       *zap.Logger
}

func NewAuditLogUsecase(auditRepo repo.AuditLogRepository, log *zap.Logger) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo, log: log}
}

func (u *AuditLogUsecase) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs, err := u.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, internalError(u.log, "list audit logs", err)
	}
	return logs, nil
}
