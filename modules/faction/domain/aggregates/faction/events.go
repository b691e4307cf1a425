package faction

import "github.com/google/uuid"

type CreatedEvent struct {
	Result Faction
}

type UpdatedEvent struct {
	Result Faction
}

type MovedEvent struct {
	Result      Faction
	OldParentID *uuid.UUID
}

// DeletedEvent carries every faction id soft-deleted by the operation,
// the requested node first.
type DeletedEvent struct {
	IDs []uuid.UUID
}
