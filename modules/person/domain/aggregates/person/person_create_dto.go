package person

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/musterhq/muster/pkg/constants"
	"github.com/musterhq/muster/pkg/serrors"
)

type CreateDTO struct {
	Username    string `json:"username" validate:"required,max=150"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,max=255"`
}

func (d *CreateDTO) Normalize() {
	d.Username = strings.TrimSpace(d.Username)
	d.Email = strings.TrimSpace(d.Email)
	d.DisplayName = strings.TrimSpace(d.DisplayName)
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		return serrors.ValidationErrors{}, true
	}
	return serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors)), false
}

func (d *CreateDTO) ToEntity() Person {
	return New(d.Username, d.Email, d.DisplayName)
}
