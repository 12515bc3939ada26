package repositories

import (
	"context"

	"github.com/sacco-suite/coop_core_app/internal/core/domain"
)

// MemberRepositoryFacade defines persistence operations for members.
type MemberRepositoryFacade interface {
	SaveMember(ctx context.Context, member domain.Member) error
	FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error)
	ListMembers(ctx context.Context, limit int, offset int) ([]domain.Member, error)
	// UpdateMember persists status/category/contact changes. The member ID
	// is immutable.
	UpdateMember(ctx context.Context, member domain.Member) error
}
