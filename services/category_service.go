package services

import (
	"context"
	"fmt"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/repository"
	"github.com/veyra-chat/server/ws"
)

// CategoryService, kategori CRUD iş mantığı. Tüm mutasyonlar owner-only.
// Silme, altındaki kanalları FK ile kategorisiz bırakır — kanal silinmez.
type CategoryService interface {
	Create(ctx context.Context, serverID, actorID string, req *models.CreateCategoryRequest) (*models.Category, error)
	Update(ctx context.Context, serverID, actorID, categoryID string, req *models.UpdateCategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, serverID, actorID, categoryID string) error
}

type categoryService struct {
	serverRepo   repository.ServerRepository
	categoryRepo repository.CategoryRepository
	memberRepo   repository.MemberRepository
	hub          ws.EventPublisher
	audit        AuditService
}

// NewCategoryService, constructor.
func NewCategoryService(
	serverRepo repository.ServerRepository,
	categoryRepo repository.CategoryRepository,
	memberRepo repository.MemberRepository,
	hub ws.EventPublisher,
	audit AuditService,
) CategoryService {
	return &categoryService{
		serverRepo:   serverRepo,
		categoryRepo: categoryRepo,
		memberRepo:   memberRepo,
		hub:          hub,
		audit:        audit,
	}
}

func (s *categoryService) Create(ctx context.Context, serverID, actorID string, req *models.CreateCategoryRequest) (*models.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	if err := s.requireOwner(ctx, serverID, actorID); err != nil {
		return nil, err
	}

	category := &models.Category{
		ServerID: serverID,
		Name:     req.Name,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditCategoryCreate,
		TargetID: category.ID,
		Detail:   category.Name,
	})

	s.broadcastToMembers(ctx, serverID, ws.Event{Op: ws.OpCategoryCreate, Data: category})

	return category, nil
}

func (s *categoryService) Update(ctx context.Context, serverID, actorID, categoryID string, req *models.UpdateCategoryRequest) (*models.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	if err := s.requireOwner(ctx, serverID, actorID); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.ServerID != serverID {
		return nil, pkg.ErrNotFound
	}

	if req.Name != nil {
		category.Name = *req.Name
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.broadcastToMembers(ctx, serverID, ws.Event{Op: ws.OpCategoryUpdate, Data: category})

	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, serverID, actorID, categoryID string) error {
	if err := s.requireOwner(ctx, serverID, actorID); err != nil {
		return err
	}

	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category.ServerID != serverID {
		return pkg.ErrNotFound
	}

	// FK ON DELETE SET NULL kanalları kategorisiz bırakır.
	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		return err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditCategoryDelete,
		TargetID: categoryID,
		Detail:   category.Name,
	})

	s.broadcastToMembers(ctx, serverID, ws.Event{
		Op:   ws.OpCategoryDelete,
		Data: map[string]string{"server_id": serverID, "category_id": categoryID},
	})

	return nil
}

func (s *categoryService) requireOwner(ctx context.Context, serverID, actorID string) error {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}
	if server.OwnerID != actorID {
		return fmt.Errorf("%w: categories are owner-only", pkg.ErrForbidden)
	}
	return nil
}

func (s *categoryService) broadcastToMembers(ctx context.Context, serverID string, event ws.Event) {
	members, err := s.memberRepo.List(ctx, serverID)
	if err != nil {
		return
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	s.hub.BroadcastToUsers(ids, event)
}
