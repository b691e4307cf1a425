package faction

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("faction not found")

	// ErrMissingOrganization rejects writes on factions that lack an
	// organization reference; creation never defaults one.
	ErrMissingOrganization = errors.New("faction has no organization")

	// ErrInvalidParent rejects a move that would place a faction
	// beneath itself and so break the forest invariant.
	ErrInvalidParent = errors.New("faction cannot be moved beneath itself")

	// ErrCrossOrganization rejects reparenting across organizations;
	// the organization reference is immutable once assigned.
	ErrCrossOrganization = errors.New("cannot move a faction to a different organization")

	// ErrDuplicateName rejects a second live faction carrying a name
	// already in use. Names and slugs are each unique among live rows.
	ErrDuplicateName = errors.New("faction name is already in use")

	// ErrDuplicateSlug mirrors ErrDuplicateName for the slug column.
	ErrDuplicateSlug = errors.New("faction slug is already in use")
)

// DepthExceededError is a user-correctable validation error raised when
// creating or moving a faction would push it past the owning
// organization's configured maximum depth.
type DepthExceededError struct {
	MaxDepth         int
	OrganizationName string
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("max faction depth of %d exceeded for organization %q", e.MaxDepth, e.OrganizationName)
}

// CycleError reports a corrupted parent chain. Acyclicity is enforced
// at write time, so hitting this on a read path means the store itself
// is broken; the request must abort rather than loop.
type CycleError struct {
	NodeID uuid.UUID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("faction hierarchy contains a cycle through node %s", e.NodeID)
}
