package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/middleware"
)

// memberService provides member management operations.
type memberService struct {
	memberRepo portsrepo.MemberRepositoryFacade
}

// NewMemberService creates a new member service.
func NewMemberService(memberRepo portsrepo.MemberRepositoryFacade) portssvc.MemberSvcFacade {
	return &memberService{memberRepo: memberRepo}
}

var _ portssvc.MemberSvcFacade = (*memberService)(nil)

// CreateMember registers a new member. New members start active unless the
// cooperative's onboarding marks them pending.
func (s *memberService) CreateMember(ctx context.Context, req dto.CreateMemberRequest, actorID string) (*domain.Member, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	category := domain.MemberCategory(req.Category)
	if category == "" {
		category = domain.CategoryRegular
	}

	now := time.Now().UTC()
	member := domain.Member{
		MemberID:              uuid.NewString(),
		Name:                  req.Name,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Status:                domain.MemberActive,
		Category:              category,
		DeclaredMonthlyIncome: req.DeclaredMonthlyIncome,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.memberRepo.SaveMember(ctx, member); err != nil {
		logger.Error("Failed to save member", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save member: %w", err)
	}

	logger.Info("Member created", slog.String("member_id", member.MemberID))
	return &member, nil
}

// GetMemberByID retrieves a member.
func (s *memberService) GetMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	member, err := s.memberRepo.FindMemberByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member %s: %w", memberID, err)
	}
	return member, nil
}

// ListMembers retrieves a page of members.
func (s *memberService) ListMembers(ctx context.Context, limit int, offset int) ([]domain.Member, error) {
	if limit <= 0 {
		limit = 20
	}
	members, err := s.memberRepo.ListMembers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// UpdateMemberStatus applies an explicit admin status/category change. The
// change lands in the audit trail via LastUpdatedBy; deactivation blocks new
// transactions but never deletes history.
func (s *memberService) UpdateMemberStatus(ctx context.Context, memberID string, req dto.UpdateMemberStatusRequest, actorID string) (*domain.Member, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	member, err := s.memberRepo.FindMemberByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member %s: %w", memberID, err)
	}

	updated := false
	if req.Status != nil {
		member.Status = domain.MemberStatus(*req.Status)
		updated = true
	}
	if req.Category != nil {
		member.Category = domain.MemberCategory(*req.Category)
		updated = true
	}
	if !updated {
		return member, nil
	}

	member.LastUpdatedAt = time.Now().UTC()
	member.LastUpdatedBy = actorID

	if err := s.memberRepo.UpdateMember(ctx, *member); err != nil {
		logger.Error("Failed to update member", slog.String("error", err.Error()), slog.String("member_id", memberID))
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	logger.Info("Member status updated",
		slog.String("member_id", memberID),
		slog.String("status", string(member.Status)),
		slog.String("category", string(member.Category)))
	return member, nil
}
