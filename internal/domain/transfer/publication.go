package transfer

import (
	"strings"
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ChannelBOP is the official provincial bulletin channel
const ChannelBOP = "BOP"

// Publication records an official announcement of a provisional transfer
type Publication struct {
	shared.TenantAggregateRoot
	CaseID        uuid.UUID
	PublishedAt   time.Time
	Channel       string
	ReferenceText string
	Notes         string
}

// NewPublication creates a publication record
func NewPublication(tenantID, caseID uuid.UUID, publishedAt time.Time, channel, referenceText string) (*Publication, error) {
	channel = strings.ToUpper(strings.TrimSpace(channel))
	if channel == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "publication channel is required")
	}
	return &Publication{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CaseID:              caseID,
		PublishedAt:         shared.DateOnly(publishedAt),
		Channel:             channel,
		ReferenceText:       strings.TrimSpace(referenceText),
	}, nil
}
