package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/colonyops/shoplist/internal/core/grocery"
	"github.com/colonyops/shoplist/internal/core/styles"
	"github.com/colonyops/shoplist/internal/core/validate"
)

const shortIDLen = 8

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// resolveID finds the item whose id equals ref or starts with it. A prefix
// matching more than one item is an error.
func resolveID(state grocery.AppState, ref string) (grocery.Item, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return grocery.Item{}, fmt.Errorf("item id is required")
	}

	if item, ok := state.ItemByID(ref); ok {
		return item, nil
	}

	var matches []grocery.Item
	for _, item := range state.Items {
		if strings.HasPrefix(item.ID, ref) {
			matches = append(matches, item)
		}
	}

	switch len(matches) {
	case 0:
		return grocery.Item{}, fmt.Errorf("no item matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return grocery.Item{}, fmt.Errorf("%q matches %d items; use a longer id", ref, len(matches))
	}
}

// printList renders the list. Styling is applied only when styled is true.
func printList(w io.Writer, state grocery.AppState, styled bool) {
	paint := func(s interface{ Render(...string) string }, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	_, _ = fmt.Fprintln(w, paint(styles.HeaderStyle, "Grocery list"))
	_, _ = fmt.Fprintln(w, paint(styles.DividerStyle, strings.Repeat("─", 32)))

	if len(state.Items) == 0 {
		_, _ = fmt.Fprintln(w, paint(styles.IDStyle, "(empty)"))
	}

	for _, item := range state.Items {
		icon, style := styles.IconOpen, styles.OpenStyle
		if item.Completed {
			icon, style = styles.IconDone, styles.DoneStyle
		}
		_, _ = fmt.Fprintf(w, "%s %s %s\n",
			paint(styles.IDStyle, shortID(item.ID)),
			paint(style, icon),
			paint(style, item.Name),
		)
	}

	_, _ = fmt.Fprintln(w)
	if state.SignedIn() {
		_, _ = fmt.Fprintln(w, paint(styles.SuccessStyle, "Signed in as "+state.Credentials.Email))
	} else {
		_, _ = fmt.Fprintln(w, paint(styles.IDStyle, "Not signed in"))
	}
}

// readPassword renders a masked huh input on a terminal, or reads one line
// from a pipe.
func readPassword(prompt io.Writer, in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		var pw string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Validate(validate.Password).
					Value(&pw),
			),
		).WithTheme(styles.FormTheme()).
			WithInput(in).
			WithOutput(prompt).
			Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return "", fmt.Errorf("password prompt aborted")
			}
			return "", fmt.Errorf("read password: %w", err)
		}
		return pw, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", fmt.Errorf("password is required")
	}
	return pw, nil
}
