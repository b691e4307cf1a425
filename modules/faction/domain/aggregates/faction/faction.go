package faction

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Option configures a new Faction.
type Option func(f *Faction)

func WithID(id uuid.UUID) Option {
	return func(f *Faction) {
		f.id = id
	}
}

func WithParentID(parentID uuid.UUID) Option {
	return func(f *Faction) {
		f.parentID = &parentID
	}
}

func WithSlug(slug string) Option {
	return func(f *Faction) {
		f.slug = slug
	}
}

func WithAbbreviation(abbreviation string) Option {
	return func(f *Faction) {
		f.abbreviation = strings.TrimSpace(abbreviation)
	}
}

func WithDescription(description string) Option {
	return func(f *Faction) {
		f.description = strings.TrimSpace(description)
	}
}

// Faction is a node in an organization's hierarchy. Parent edges form a
// forest; depth and subtree expansion are computed by the hierarchy
// resolver, never stored.
type Faction struct {
	id             uuid.UUID
	organizationID uuid.UUID
	parentID       *uuid.UUID
	name           string
	slug           string
	abbreviation   string
	description    string
	active         bool
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

func New(name string, organizationID uuid.UUID, opts ...Option) Faction {
	f := Faction{
		id:             uuid.New(),
		organizationID: organizationID,
		name:           strings.TrimSpace(name),
		active:         true,
	}
	for _, opt := range opts {
		opt(&f)
	}
	if f.slug == "" {
		f.slug = Slugify(f.name)
	}
	return f
}

func Hydrate(
	id uuid.UUID,
	organizationID uuid.UUID,
	parentID *uuid.UUID,
	name string,
	slug string,
	abbreviation string,
	description string,
	active bool,
	createdAt time.Time,
	updatedAt time.Time,
	deletedAt *time.Time,
) Faction {
	return Faction{
		id:             id,
		organizationID: organizationID,
		parentID:       parentID,
		name:           name,
		slug:           slug,
		abbreviation:   abbreviation,
		description:    description,
		active:         active,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		deletedAt:      deletedAt,
	}
}

func (f Faction) ID() uuid.UUID             { return f.id }
func (f Faction) OrganizationID() uuid.UUID { return f.organizationID }
func (f Faction) ParentID() *uuid.UUID      { return f.parentID }
func (f Faction) Name() string              { return f.name }
func (f Faction) Slug() string              { return f.slug }
func (f Faction) Abbreviation() string      { return f.abbreviation }
func (f Faction) Description() string       { return f.description }
func (f Faction) Active() bool              { return f.active }
func (f Faction) CreatedAt() time.Time      { return f.createdAt }
func (f Faction) UpdatedAt() time.Time      { return f.updatedAt }
func (f Faction) DeletedAt() *time.Time     { return f.deletedAt }
func (f Faction) IsRoot() bool              { return f.parentID == nil }
func (f Faction) IsZero() bool              { return f.id == uuid.Nil }

func (f Faction) Renamed(name string) Faction {
	f.name = strings.TrimSpace(name)
	return f
}

func (f Faction) Described(description string) Faction {
	f.description = strings.TrimSpace(description)
	return f
}

func (f Faction) Reparented(parentID *uuid.UUID) Faction {
	f.parentID = parentID
	return f
}

// Slugify lowercases the name and collapses runs of non-alphanumerics
// into single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
