package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/repository"
)

// AuditService, moderasyon/yönetim aksiyonlarının kaydını tutar.
//
// Record fire-and-forget'tir: audit yazımı başarısız olursa sadece
// log'lanır, asıl mutasyon geri alınmaz.
type AuditService interface {
	Record(ctx context.Context, entry *models.AuditLog)
	List(ctx context.Context, serverID, actorID string, limit int) ([]models.AuditLog, error)
}

type auditService struct {
	auditRepo  repository.AuditRepository
	memberRepo repository.MemberRepository
	serverRepo repository.ServerRepository
}

// NewAuditService, constructor.
func NewAuditService(auditRepo repository.AuditRepository, memberRepo repository.MemberRepository, serverRepo repository.ServerRepository) AuditService {
	return &auditService{
		auditRepo:  auditRepo,
		memberRepo: memberRepo,
		serverRepo: serverRepo,
	}
}

func (s *auditService) Record(ctx context.Context, entry *models.AuditLog) {
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("[audit] failed to record %s on server %s: %v", entry.Action, entry.ServerID, err)
	}
}

// List, audit log'u döner. Sadece owner ve admin görebilir.
func (s *auditService) List(ctx context.Context, serverID, actorID string, limit int) ([]models.AuditLog, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}

	if server.OwnerID != actorID {
		member, err := s.memberRepo.Get(ctx, serverID, actorID)
		if err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				return nil, fmt.Errorf("%w: not a member", pkg.ErrForbidden)
			}
			return nil, err
		}
		if member.Role != models.RoleAdmin {
			return nil, fmt.Errorf("%w: audit log requires admin", pkg.ErrForbidden)
		}
	}

	return s.auditRepo.ListByServer(ctx, serverID, limit)
}
