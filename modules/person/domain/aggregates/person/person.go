package person

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Person is the identity record memberships point at. Authentication
// itself lives outside this system; the active flag mirrors whether the
// identity may sign in at all.
type Person struct {
	id          uuid.UUID
	username    string
	email       string
	displayName string
	active      bool
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

func New(username, email, displayName string) Person {
	return Person{
		id:          uuid.New(),
		username:    normalize(username),
		email:       normalize(email),
		displayName: strings.TrimSpace(displayName),
		active:      true,
	}
}

func Hydrate(
	id uuid.UUID,
	username string,
	email string,
	displayName string,
	active bool,
	createdAt time.Time,
	updatedAt time.Time,
	deletedAt *time.Time,
) Person {
	return Person{
		id:          id,
		username:    normalize(username),
		email:       normalize(email),
		displayName: strings.TrimSpace(displayName),
		active:      active,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		deletedAt:   deletedAt,
	}
}

func (p Person) ID() uuid.UUID         { return p.id }
func (p Person) Username() string      { return p.username }
func (p Person) Email() string         { return p.email }
func (p Person) DisplayName() string   { return p.displayName }
func (p Person) Active() bool          { return p.active }
func (p Person) CreatedAt() time.Time  { return p.createdAt }
func (p Person) UpdatedAt() time.Time  { return p.updatedAt }
func (p Person) DeletedAt() *time.Time { return p.deletedAt }
func (p Person) IsZero() bool          { return p.id == uuid.Nil && p.username == "" }

func (p Person) Deactivated() Person {
	p.active = false
	return p
}

func normalize(v string) string { return strings.ToLower(strings.TrimSpace(v)) }
