package modules

import (
	"github.com/musterhq/muster/modules/faction"
	"github.com/musterhq/muster/modules/person"
	"github.com/musterhq/muster/pkg/application"
)

// BuiltInModules in registration order; person must come before
// faction so membership rows can reference people.
var BuiltInModules = []application.Module{
	person.NewModule(),
	faction.NewModule(),
}

func Load(app application.Application, mods ...application.Module) error {
	for _, module := range mods {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
