package transfer

import (
	"context"
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CaseSearchFilter narrows transfer-case listings
type CaseSearchFilter struct {
	Type        CaseType
	Status      CaseStatus
	ContractID  *uuid.UUID
	SepulturaID *uuid.UUID
	OpenedFrom  *time.Time
	OpenedTo    *time.Time
	PartyName   string
	Page        int
	PageSize    int
}

// CaseRepository persists transfer cases with their parties, documents and
// publications loaded as one aggregate.
type CaseRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*OwnershipTransferCase, error)
	Search(ctx context.Context, tenantID uuid.UUID, filter CaseSearchFilter) (shared.Paginated[OwnershipTransferCase], error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[CaseStatus]int64, error)
	// CountCaseNumbersLike counts case numbers matching a prefix, used for
	// per-year sequence generation.
	CountCaseNumbersLike(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)
	CountResolutionNumbersLike(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)
	FindStalledDocsPending(ctx context.Context, tenantID uuid.UUID, olderThan time.Time) ([]OwnershipTransferCase, error)
	Save(ctx context.Context, c *OwnershipTransferCase) error
	SaveParty(ctx context.Context, party *OwnershipTransferParty) error
	DeletePartiesByRole(ctx context.Context, tenantID, caseID uuid.UUID, role PartyRole) error
	SaveDocument(ctx context.Context, doc *CaseDocument) error
	SavePublication(ctx context.Context, pub *Publication) error
}
