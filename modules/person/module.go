package person

import (
	"embed"

	"github.com/musterhq/muster/modules/person/infrastructure/persistence"
	"github.com/musterhq/muster/modules/person/presentation/controllers"
	"github.com/musterhq/muster/modules/person/services"
	"github.com/musterhq/muster/pkg/application"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles, "infrastructure/persistence/schema")

	app.RegisterServices(
		services.NewPersonService(persistence.NewPersonRepository(), app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewPersonAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "person"
}
