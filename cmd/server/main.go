package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/wolfeidau/tenancy/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug        bool `help:"Enable debug mode."`
		Version      kong.VersionFlag
		Serve        commands.ServeCmd        `cmd:"" default:"withargs" help:"Start the tenancy API server"`
		Seed         commands.SeedCmd         `cmd:"" help:"Seed the tier and role catalogue"`
		CreateTables commands.CreateTablesCmd `cmd:"" help:"Create the DynamoDB tables"`
		Migrate      commands.MigrateCmd      `cmd:"" help:"Apply PostgreSQL migrations"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("tenancy"),
		kong.Description("Organization membership, authorization and tier enforcement."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
