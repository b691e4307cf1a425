package member

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("membership not found")

	// ErrAlreadyMember rejects a second live membership of the same
	// kind for one (faction, person) pair.
	ErrAlreadyMember = errors.New("person already has a membership of this kind in the faction")

	// ErrOrganizationMismatch rejects attaching a membership to a
	// faction owned by a different organization.
	ErrOrganizationMismatch = errors.New("membership and faction belong to different organizations")
)

// FactionFullError is raised when provisioning an attendee into a
// faction whose direct attendee count has reached the organization's
// configured cap.
type FactionFullError struct {
	MaxAttendees int
	FactionName  string
}

func (e *FactionFullError) Error() string {
	return fmt.Sprintf("faction %q is full: at most %d attendees allowed", e.FactionName, e.MaxAttendees)
}
