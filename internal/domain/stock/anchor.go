package stock

import (
	"context"
	"time"

	"gestock/internal/core/id"
	"gestock/internal/core/types"
)

// Anchor is the authoritative baseline for an (article, warehouse) pair: the
// latest physical inventory count. It supersedes all movement history before
// its timestamp for that pair.
//
// Counts are recorded against a per-packaging-level article code; the source
// resolves the code to a concrete unit before handing the anchor out. The
// quantity is NOT converted here - conversion through the unit graph is the
// caller's responsibility.
type Anchor struct {
	ArticleID   id.ID          `db:"article_id"`
	WarehouseID id.ID          `db:"warehouse_id"`
	UnitID      id.ID          `db:"unit_id"`
	Quantity    types.Quantity `db:"quantity"`
	TakenAt     time.Time      `db:"taken_at"`
}

// AnchorSource resolves physical-count baselines.
//
// Anchoring is strictly warehouse-scoped: counts are performed per site, so
// a company-wide query is never anchored.
type AnchorSource interface {
	// Latest returns the most recent count for the pair, or nil when no
	// physical count has ever been recorded. The counted code is resolved
	// against the full unit catalog, deletion marks included: a count
	// against a since-deleted unit surfaces with that unit's id and the
	// resolver rejects it with ANCHOR_UNIT_UNRESOLVABLE instead of silently
	// dropping the baseline. A code matching no unit row has no article to
	// attach to and is never returned; the count document service rejects
	// such codes at write time.
	Latest(ctx context.Context, articleID, warehouseID id.ID) (*Anchor, error)

	// LatestAll returns the latest count of every (article, warehouse) pair,
	// optionally restricted to one warehouse. Code resolution follows
	// Latest. A source unable to name the counted unit may hand back a zero
	// unit id; bulk resolution flags such rows instead of aborting the
	// listing.
	LatestAll(ctx context.Context, warehouseID *id.ID) ([]Anchor, error)
}
