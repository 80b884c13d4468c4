package ports

import (
	"context"

	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
)

// AuditLogStore is an append-only, size-capped registration log. Implementations
// must serialize Append so concurrent records never interleave.
type AuditLogStore interface {
	Append(ctx context.Context, record domain.AuditRecord) error
}
