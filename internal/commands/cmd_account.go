package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/shoplist/internal/core/event"
	"github.com/colonyops/shoplist/internal/core/grocery"
	"github.com/colonyops/shoplist/internal/core/styles"
	"github.com/colonyops/shoplist/internal/core/validate"
)

// AccountCmds groups signup, signin, and signout.
type AccountCmds struct {
	flags *Flags
	app   *App
}

// NewAccountCmds creates the account commands
func NewAccountCmds(flags *Flags, app *App) *AccountCmds {
	return &AccountCmds{flags: flags, app: app}
}

// Register adds the account commands to the application
func (cmd *AccountCmds) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "signup",
			Usage:     "Create a remote account and upload the current list",
			UsageText: "shoplist signup <email> [password]",
			Description: `Creates an account on the configured remote store. On success the account
is signed in and every local item is uploaded.

The password is prompted for when omitted; it may also be piped on stdin.`,
			Action: cmd.runSignUp,
		},
		&cli.Command{
			Name:      "signin",
			Usage:     "Sign in to an existing remote account",
			UsageText: "shoplist signin <email> [password]",
			Description: `Signs in to the configured remote store. The local list is kept; later
edits are synced to the account.`,
			Action: cmd.runSignIn,
		},
		&cli.Command{
			Name:      "signout",
			Usage:     "Forget the signed-in account",
			UsageText: "shoplist signout",
			Action:    cmd.runSignOut,
		},
	)

	return app
}

func (cmd *AccountCmds) credentials(c *cli.Command) (string, string, error) {
	email := c.Args().Get(0)
	if err := validate.Email(email); err != nil {
		return "", "", err
	}

	password := c.Args().Get(1)
	if password == "" {
		var err error
		password, err = readPassword(c.Root().ErrWriter, c.Root().Reader)
		if err != nil {
			return "", "", err
		}
	}

	if err := validate.Credentials(email, password); err != nil {
		return "", "", err
	}
	return email, password, nil
}

func (cmd *AccountCmds) runSignUp(ctx context.Context, c *cli.Command) error {
	email, password, err := cmd.credentials(c)
	if err != nil {
		return err
	}

	outcome, err := cmd.app.Run(ctx, func(grocery.AppState) ([]event.Event, error) {
		return []event.Event{event.SignUp{Email: email, Password: password}}, nil
	})
	if err != nil {
		return err
	}

	return cmd.finish(c, outcome, email, "signed up")
}

func (cmd *AccountCmds) runSignIn(ctx context.Context, c *cli.Command) error {
	email, password, err := cmd.credentials(c)
	if err != nil {
		return err
	}

	outcome, err := cmd.app.Run(ctx, func(grocery.AppState) ([]event.Event, error) {
		return []event.Event{event.SignIn{Email: email, Password: password}}, nil
	})
	if err != nil {
		return err
	}

	return cmd.finish(c, outcome, email, "signed in")
}

func (cmd *AccountCmds) finish(c *cli.Command, outcome Outcome, email, verb string) error {
	for _, s := range outcome.Status {
		switch {
		case s.SignUpError:
			_, _ = fmt.Fprintln(c.Root().ErrWriter, styles.ErrorStyle.Render("sign up failed for "+email))
			return cli.Exit("", 1)
		case s.SignInError:
			_, _ = fmt.Fprintln(c.Root().ErrWriter, styles.ErrorStyle.Render("sign in failed for "+email))
			return cli.Exit("", 1)
		}
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "%s as %s\n", verb, email)
	return nil
}

func (cmd *AccountCmds) runSignOut(ctx context.Context, c *cli.Command) error {
	outcome, err := cmd.app.Run(ctx, func(state grocery.AppState) ([]event.Event, error) {
		if !state.SignedIn() {
			return nil, nil
		}
		return []event.Event{event.SignOut{}}, nil
	})
	if err != nil {
		return err
	}

	if !outcome.Before.SignedIn() {
		_, _ = fmt.Fprintln(c.Root().Writer, "not signed in")
		return nil
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "signed out %s\n", outcome.Before.Credentials.Email)
	return nil
}
