package member

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/musterhq/muster/pkg/constants"
	"github.com/musterhq/muster/pkg/serrors"
)

type CreateDTO struct {
	Kind           Kind       `json:"kind" validate:"required,oneof=leader attendee"`
	PersonID       uuid.UUID  `json:"person_id" validate:"required"`
	OrganizationID uuid.UUID  `json:"organization_id" validate:"required"`
	FactionID      *uuid.UUID `json:"faction_id"`
	IsAdmin        bool       `json:"is_admin"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return serrors.ValidationErrors{}, true
	}
	return serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors)), false
}

func (d *CreateDTO) ToEntity() Membership {
	opts := []Option{}
	if d.FactionID != nil {
		opts = append(opts, WithFactionID(*d.FactionID))
	}
	if d.IsAdmin && d.Kind == KindLeader {
		opts = append(opts, WithAdmin())
	}
	return New(d.Kind, d.PersonID, d.OrganizationID, opts...)
}
