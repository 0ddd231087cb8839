package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/shoplist/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *App

	// Command-specific flags
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List grocery items",
		UsageText: "shoplist ls [--json]",
		Description: `Prints the local grocery list and the signed-in account, if any.

Item ids are shortened to their first 8 characters; any unique prefix is
accepted wherever a command takes an id.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the stored state as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.Run,
	})

	return app
}

// Run prints the list. It is also the root command's default action.
func (cmd *LsCmd) Run(ctx context.Context, c *cli.Command) error {
	state := cmd.app.Store.Initial(ctx)
	out := c.Root().Writer

	if cmd.jsonOutput {
		// Never print the stored password.
		if state.Credentials != nil {
			creds := *state.Credentials
			creds.Password = ""
			state.Credentials = &creds
		}
		return iojson.WriteWith(out, c.Root().ErrWriter, state)
	}

	printList(out, state, isTerminal(out))
	return nil
}
