package person

import "github.com/google/uuid"

type CreatedEvent struct {
	Result Person
}

type DeletedEvent struct {
	ID uuid.UUID
}
