package member

import "github.com/google/uuid"

type ProvisionedEvent struct {
	Result Membership
}

type PromotedEvent struct {
	Result Membership
}

type ReassignedEvent struct {
	Result       Membership
	OldFactionID *uuid.UUID
}

type RemovedEvent struct {
	ID uuid.UUID
}
