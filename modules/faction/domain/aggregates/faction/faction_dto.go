package faction

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/musterhq/muster/pkg/constants"
	"github.com/musterhq/muster/pkg/serrors"
)

type CreateDTO struct {
	Name           string     `json:"name" validate:"required,max=255"`
	Description    string     `json:"description" validate:"max=2000"`
	Abbreviation   string     `json:"abbreviation" validate:"max=50"`
	Slug           string     `json:"slug" validate:"max=255"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	ParentID       *uuid.UUID `json:"parent_id"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.Abbreviation = strings.TrimSpace(d.Abbreviation)
	d.Slug = strings.TrimSpace(d.Slug)
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		return serrors.ValidationErrors{}, true
	}
	return serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors)), false
}

func (d *CreateDTO) ToEntity() Faction {
	opts := []Option{
		WithDescription(d.Description),
		WithAbbreviation(d.Abbreviation),
	}
	if d.Slug != "" {
		opts = append(opts, WithSlug(d.Slug))
	}
	if d.ParentID != nil {
		opts = append(opts, WithParentID(*d.ParentID))
	}
	return New(d.Name, d.OrganizationID, opts...)
}

type UpdateDTO struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

func (d *UpdateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		return serrors.ValidationErrors{}, true
	}
	return serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors)), false
}

func (d *UpdateDTO) Apply(f Faction) Faction {
	return f.Renamed(d.Name).Described(d.Description)
}
