package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/shoplist/internal/core/event"
	"github.com/colonyops/shoplist/internal/core/grocery"
	"github.com/colonyops/shoplist/pkg/iojson"
)

type EmitCmd struct {
	flags *Flags
	app   *App

	reader iojson.FileReader[json.RawMessage]
}

// NewEmitCmd creates a new emit command
func NewEmitCmd(flags *Flags, app *App) *EmitCmd {
	return &EmitCmd{flags: flags, app: app}
}

// Register adds the emit command to the application
func (cmd *EmitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "emit",
		Usage:     "Dispatch raw view events from JSON",
		UsageText: "shoplist emit [-f file] < events.ndjson",
		Description: `Reads a stream of JSON events and dispatches them in order, exactly as a
view would. Each value must carry an "eventType" field:

  {"eventType":"addItem","id":"a1","name":"milk"}
  {"eventType":"completeItem","id":"a1","completed":false}

Unrecognized event types are dispatched and ignored. The resulting state is
printed as JSON once every event has been processed.`,
		Flags:  []cli.Flag{cmd.reader.Flag()},
		Action: cmd.run,
	})

	return app
}

func (cmd *EmitCmd) run(ctx context.Context, c *cli.Command) error {
	var events []event.Event
	err := cmd.reader.Each(func(raw json.RawMessage) error {
		ev, err := event.Decode(raw)
		if err != nil {
			return fmt.Errorf("event %d: %w", len(events)+1, err)
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		_ = iojson.WriteError(c.Root().ErrWriter, "invalid event input", map[string]any{"error": err.Error()})
		return cli.Exit("", 1)
	}

	outcome, err := cmd.app.Run(ctx, func(grocery.AppState) ([]event.Event, error) {
		return events, nil
	})
	if err != nil {
		return err
	}

	state := outcome.After
	if state.Credentials != nil {
		creds := *state.Credentials
		creds.Password = ""
		state.Credentials = &creds
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, struct {
		Dispatched int                        `json:"dispatched"`
		State      grocery.AppState           `json:"state"`
		Status     []event.SignInStatusChange `json:"status,omitempty"`
	}{
		Dispatched: len(events),
		State:      state,
		Status:     outcome.Status,
	})
}
