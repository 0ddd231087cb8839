package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/shoplist/internal/core/event"
	"github.com/colonyops/shoplist/internal/core/grocery"
	"github.com/colonyops/shoplist/internal/core/validate"
)

// ItemCmds groups the list editing commands: add, done, rename, rm, clear.
type ItemCmds struct {
	flags *Flags
	app   *App
}

// NewItemCmds creates the list editing commands
func NewItemCmds(flags *Flags, app *App) *ItemCmds {
	return &ItemCmds{flags: flags, app: app}
}

// Register adds the list editing commands to the application
func (cmd *ItemCmds) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "add",
			Usage:     "Add an item to the list",
			UsageText: "shoplist add <name...>",
			Action:    cmd.runAdd,
		},
		&cli.Command{
			Name:      "done",
			Aliases:   []string{"toggle"},
			Usage:     "Toggle an item's completed state",
			UsageText: "shoplist done <id>",
			Action:    cmd.runDone,
		},
		&cli.Command{
			Name:      "rename",
			Usage:     "Rename an item",
			UsageText: "shoplist rename <id> <name...>",
			Action:    cmd.runRename,
		},
		&cli.Command{
			Name:      "rm",
			Usage:     "Remove an item",
			UsageText: "shoplist rm <id>",
			Action:    cmd.runRm,
		},
		&cli.Command{
			Name:      "clear",
			Usage:     "Remove every item",
			UsageText: "shoplist clear",
			Description: `Empties the list. When signed in, the remote copy is deleted as well and
the account is signed out.`,
			Action: cmd.runClear,
		},
	)

	return app
}

func joinArgs(c *cli.Command, from int) string {
	return strings.TrimSpace(strings.Join(c.Args().Slice()[min(from, c.Args().Len()):], " "))
}

func (cmd *ItemCmds) runAdd(ctx context.Context, c *cli.Command) error {
	name := joinArgs(c, 0)
	if err := validate.ItemName(name); err != nil {
		return err
	}

	id := grocery.NewID()
	outcome, err := cmd.app.Run(ctx, func(grocery.AppState) ([]event.Event, error) {
		return []event.Event{event.AddItem{ID: id, Name: name}}, nil
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "added %s %s\n", shortID(id), name)
	return cmd.report(c, outcome)
}

func (cmd *ItemCmds) runDone(ctx context.Context, c *cli.Command) error {
	var item grocery.Item
	outcome, err := cmd.app.Run(ctx, func(state grocery.AppState) ([]event.Event, error) {
		var err error
		item, err = resolveID(state, c.Args().Get(0))
		if err != nil {
			return nil, err
		}
		return []event.Event{event.CompleteItem{ID: item.ID, Completed: item.Completed}}, nil
	})
	if err != nil {
		return err
	}

	verb := "completed"
	if item.Completed {
		verb = "reopened"
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "%s %s %s\n", verb, shortID(item.ID), item.Name)
	return cmd.report(c, outcome)
}

func (cmd *ItemCmds) runRename(ctx context.Context, c *cli.Command) error {
	name := joinArgs(c, 1)
	if err := validate.ItemName(name); err != nil {
		return err
	}

	var item grocery.Item
	outcome, err := cmd.app.Run(ctx, func(state grocery.AppState) ([]event.Event, error) {
		var err error
		item, err = resolveID(state, c.Args().Get(0))
		if err != nil {
			return nil, err
		}
		return []event.Event{event.UpdateItem{ID: item.ID, Name: name}}, nil
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "renamed %s to %s\n", shortID(item.ID), name)
	return cmd.report(c, outcome)
}

func (cmd *ItemCmds) runRm(ctx context.Context, c *cli.Command) error {
	var item grocery.Item
	outcome, err := cmd.app.Run(ctx, func(state grocery.AppState) ([]event.Event, error) {
		var err error
		item, err = resolveID(state, c.Args().Get(0))
		if err != nil {
			return nil, err
		}
		return []event.Event{event.DeleteItem{ID: item.ID}}, nil
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "removed %s %s\n", shortID(item.ID), item.Name)
	return cmd.report(c, outcome)
}

func (cmd *ItemCmds) runClear(ctx context.Context, c *cli.Command) error {
	outcome, err := cmd.app.Run(ctx, func(grocery.AppState) ([]event.Event, error) {
		return []event.Event{event.EmptyList{}}, nil
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "removed %d items\n", len(outcome.Before.Items))
	if outcome.Before.SignedIn() && !outcome.After.SignedIn() {
		_, _ = fmt.Fprintf(c.Root().Writer, "signed out %s\n", outcome.Before.Credentials.Email)
	}
	return cmd.report(c, outcome)
}

// report prints the list when the session is interactive.
func (cmd *ItemCmds) report(c *cli.Command, outcome Outcome) error {
	out := c.Root().Writer
	if isTerminal(out) {
		_, _ = fmt.Fprintln(out)
		printList(out, outcome.After, true)
	}
	return nil
}
