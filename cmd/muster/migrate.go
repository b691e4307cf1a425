package main

import (
	"github.com/spf13/cobra"

	"github.com/musterhq/muster/modules"
	"github.com/musterhq/muster/pkg/application"
	"github.com/musterhq/muster/pkg/configuration"
	"github.com/musterhq/muster/pkg/eventbus"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := loadApp()
				if err != nil {
					return err
				}
				return app.Migrations().Up(cmd.Context(), configuration.Use().Database.ConnectionString())
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := loadApp()
				if err != nil {
					return err
				}
				return app.Migrations().Down(cmd.Context(), configuration.Use().Database.ConnectionString())
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := loadApp()
				if err != nil {
					return err
				}
				return app.Migrations().Status(cmd.Context(), configuration.Use().Database.ConnectionString())
			},
		},
	)
	return cmd
}

// loadApp registers every module so their embedded schemas are known to
// the migration manager; no server or pool is started.
func loadApp() (application.Application, error) {
	conf := configuration.Use()
	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(conf.Logger()),
		Logger:   conf.Logger(),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		return nil, err
	}
	return app, nil
}
