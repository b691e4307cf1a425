package organization

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Organization owns a forest of factions and the settings governing
// them. Its own lifecycle is managed elsewhere; this entity carries only
// what faction management consumes.
type Organization struct {
	id           uuid.UUID
	name         string
	abbreviation string
	settings     Settings
	createdAt    time.Time
	updatedAt    time.Time
}

func New(name, abbreviation string) Organization {
	return Organization{
		id:           uuid.New(),
		name:         strings.TrimSpace(name),
		abbreviation: strings.TrimSpace(abbreviation),
		settings:     DefaultSettings(),
	}
}

func Hydrate(
	id uuid.UUID,
	name string,
	abbreviation string,
	settings Settings,
	createdAt time.Time,
	updatedAt time.Time,
) Organization {
	return Organization{
		id:           id,
		name:         strings.TrimSpace(name),
		abbreviation: strings.TrimSpace(abbreviation),
		settings:     settings,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (o Organization) ID() uuid.UUID        { return o.id }
func (o Organization) Name() string         { return o.name }
func (o Organization) Abbreviation() string { return o.abbreviation }
func (o Organization) Settings() Settings   { return o.settings }
func (o Organization) CreatedAt() time.Time { return o.createdAt }
func (o Organization) UpdatedAt() time.Time { return o.updatedAt }
func (o Organization) IsZero() bool         { return o.id == uuid.Nil }

func (o Organization) WithSettings(s Settings) Organization {
	o.settings = s
	return o
}
