package member

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the two membership variants.
type Kind string

const (
	KindLeader   Kind = "leader"
	KindAttendee Kind = "attendee"
)

func (k Kind) Valid() bool {
	return k == KindLeader || k == KindAttendee
}

// Person is the identity snapshot repositories hydrate onto a
// membership for listing; the identity record itself lives in the
// person module.
type Person struct {
	ID          uuid.UUID
	Username    string
	Email       string
	DisplayName string
}

// Option configures a new Membership.
type Option func(m *Membership)

func WithFactionID(factionID uuid.UUID) Option {
	return func(m *Membership) {
		m.factionID = &factionID
	}
}

func WithAdmin() Option {
	return func(m *Membership) {
		m.isAdmin = true
	}
}

// Membership attaches one person to at most one faction. A nil faction
// means the person is provisioned but unassigned. Only leader
// memberships may carry the administrator flag.
type Membership struct {
	id             uuid.UUID
	kind           Kind
	personID       uuid.UUID
	factionID      *uuid.UUID
	organizationID uuid.UUID
	isAdmin        bool
	person         Person
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

func New(kind Kind, personID, organizationID uuid.UUID, opts ...Option) Membership {
	m := Membership{
		id:             uuid.New(),
		kind:           kind,
		personID:       personID,
		organizationID: organizationID,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.kind != KindLeader {
		m.isAdmin = false
	}
	return m
}

func Hydrate(
	id uuid.UUID,
	kind Kind,
	personID uuid.UUID,
	factionID *uuid.UUID,
	organizationID uuid.UUID,
	isAdmin bool,
	p Person,
	createdAt time.Time,
	updatedAt time.Time,
	deletedAt *time.Time,
) Membership {
	return Membership{
		id:             id,
		kind:           kind,
		personID:       personID,
		factionID:      factionID,
		organizationID: organizationID,
		isAdmin:        isAdmin,
		person:         p,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		deletedAt:      deletedAt,
	}
}

func (m Membership) ID() uuid.UUID             { return m.id }
func (m Membership) Kind() Kind                { return m.kind }
func (m Membership) PersonID() uuid.UUID       { return m.personID }
func (m Membership) FactionID() *uuid.UUID     { return m.factionID }
func (m Membership) OrganizationID() uuid.UUID { return m.organizationID }
func (m Membership) IsAdmin() bool             { return m.kind == KindLeader && m.isAdmin }
func (m Membership) Person() Person            { return m.person }
func (m Membership) CreatedAt() time.Time      { return m.createdAt }
func (m Membership) UpdatedAt() time.Time      { return m.updatedAt }
func (m Membership) DeletedAt() *time.Time     { return m.deletedAt }
func (m Membership) IsZero() bool              { return m.id == uuid.Nil }

// Promoted sets the administrator flag; only meaningful for leaders.
func (m Membership) Promoted(isAdmin bool) Membership {
	if m.kind == KindLeader {
		m.isAdmin = isAdmin
	}
	return m
}

func (m Membership) Reassigned(factionID *uuid.UUID) Membership {
	m.factionID = factionID
	return m
}
