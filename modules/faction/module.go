package faction

import (
	"embed"

	"github.com/musterhq/muster/modules/faction/infrastructure/persistence"
	"github.com/musterhq/muster/modules/faction/presentation/controllers"
	"github.com/musterhq/muster/modules/faction/services"
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

	factionRepo := persistence.NewFactionRepository()
	memberRepo := persistence.NewMemberRepository()
	orgRepo := persistence.NewOrganizationRepository()

	scopeService := services.NewScopeService(memberRepo, factionRepo)
	queryService := services.NewMemberQueryService(memberRepo, factionRepo)

	app.RegisterServices(
		scopeService,
		queryService,
		services.NewFactionService(factionRepo, orgRepo, scopeService, app.EventPublisher()),
		services.NewMemberService(memberRepo, factionRepo, orgRepo, scopeService, app.EventPublisher()),
		services.NewDashboardService(scopeService, queryService, app.Logger()),
	)

	app.RegisterControllers(
		controllers.NewDashboardController(app),
		controllers.NewFactionAPIController(app),
		controllers.NewMemberAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "faction"
}
