package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cld-events/bidsim-api/internal/catalog"
	"github.com/cld-events/bidsim-api/internal/client"
	"github.com/cld-events/bidsim-api/internal/scoring"
)

// App drives the selection flow over a terminal.
type App struct {
	api    *client.API
	flow   *client.Flow
	reader *bufio.Reader
	out    io.Writer
}

// NewApp builds the terminal app, resuming the flow from a stored token.
func NewApp(api *client.API) *App {
	return &App{
		api:    api,
		flow:   client.NewFlow(client.LoadToken()),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run loops over the flow pages until the user quits or input ends.
func (a *App) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var err error
		switch a.flow.Page() {
		case client.PageLogin:
			err = a.loginPage(ctx)
		case client.PageSignup:
			err = a.signupPage(ctx)
		case client.PageTeam:
			err = a.teamPage()
		case client.PageBids:
			err = a.bidsPage()
		case client.PageDatasets:
			err = a.datasetsPage()
		case client.PageCredits:
			err = a.creditsPage()
		case client.PageResults:
			err = a.resultsPage(ctx)
		}
		if err == errQuit {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

var errQuit = fmt.Errorf("quit")

func (a *App) loginPage(ctx context.Context) error {
	fmt.Fprintln(a.out, "== Log in ==")
	choice, err := GetSimpleText(a.reader, "(l)og in, (s)ign up, (q)uit", a.out)
	if err != nil {
		return err
	}
	switch strings.ToLower(choice) {
	case "s":
		a.flow.GoToSignup()
		return nil
	case "q":
		return errQuit
	}

	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}

	token, err := a.api.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return nil
	}
	if err := client.SaveToken(token); err != nil {
		fmt.Fprintf(a.out, "warning: could not store session: %v\n", err)
	}
	a.flow.LoginSucceeded(token)
	return nil
}

func (a *App) signupPage(ctx context.Context) error {
	fmt.Fprintln(a.out, "== Sign up ==")
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}

	if _, err := a.api.Signup(ctx, email, password, name); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return nil
	}
	fmt.Fprintln(a.out, "Account created. Please log in.")
	a.flow.SignupSucceeded()
	return nil
}

func (a *App) teamPage() error {
	fmt.Fprintln(a.out, "== Team setup ==")
	name, err := GetSimpleText(a.reader, "Team name (empty for Unnamed, 'logout' to log out)", a.out)
	if err != nil {
		return err
	}
	if strings.EqualFold(name, "logout") {
		a.logout()
		return nil
	}
	a.flow.TeamName = name
	a.flow.ContinueToBids()
	return nil
}

func (a *App) bidsPage() error {
	fmt.Fprintln(a.out, "== Pick algorithms (at least 4) ==")
	for ti, tier := range catalog.Tiers {
		fmt.Fprintf(a.out, "%s:\n", tier.Title)
		for ii, item := range tier.Items {
			mark := " "
			if a.flow.BidSelected(ti, ii) {
				mark = "x"
			}
			fmt.Fprintf(a.out, "  [%s] %d.%d %s\n", mark, ti, ii, item.Name)
		}
	}

	choice, err := GetSimpleText(a.reader, "Toggle 'tier.item', (n)ext, (b)ack", a.out)
	if err != nil {
		return err
	}
	switch strings.ToLower(choice) {
	case "n":
		if err := a.flow.ContinueToDatasets(); err != nil {
			fmt.Fprintln(a.out, err.Error())
		}
		return nil
	case "b":
		a.flow.BackToTeam()
		return nil
	}

	tier, item, ok := parseBidChoice(choice)
	if !ok || !catalog.ValidBid(tier, item) {
		fmt.Fprintln(a.out, "Unknown selection.")
		return nil
	}
	a.flow.ToggleBid(tier, item)
	return nil
}

func parseBidChoice(s string) (int, int, bool) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	tier, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	item, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return tier, item, true
}

func (a *App) datasetsPage() error {
	fmt.Fprintln(a.out, "== Pick datasets (exactly 5) ==")
	selected := a.flow.Datasets()
	for i, name := range catalog.Datasets {
		mark := " "
		for _, d := range selected {
			if d == name {
				mark = "x"
				break
			}
		}
		fmt.Fprintf(a.out, "  [%s] %d %s\n", mark, i, name)
	}

	choice, err := GetSimpleText(a.reader, "Toggle by number, (n)ext, (b)ack", a.out)
	if err != nil {
		return err
	}
	switch strings.ToLower(choice) {
	case "n":
		if err := a.flow.ContinueToCredits(); err != nil {
			fmt.Fprintln(a.out, err.Error())
		}
		return nil
	case "b":
		a.flow.BackToBids()
		return nil
	}

	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 0 || idx >= len(catalog.Datasets) {
		fmt.Fprintln(a.out, "Unknown selection.")
		return nil
	}
	if err := a.flow.ToggleDataset(catalog.Datasets[idx]); err != nil {
		fmt.Fprintln(a.out, err.Error())
	}
	return nil
}

func (a *App) creditsPage() error {
	fmt.Fprintln(a.out, "== Credits ==")
	credits, err := GetSimpleText(a.reader, "Credits to spend ('b' to go back)", a.out)
	if err != nil {
		return err
	}
	if strings.EqualFold(credits, "b") {
		a.flow.BackToDatasets()
		return nil
	}
	a.flow.Credits = credits
	a.flow.CalculateScore()
	return nil
}

func (a *App) resultsPage(ctx context.Context) error {
	fmt.Fprintln(a.out, "== Results ==")
	fmt.Fprintf(a.out, "Score: %s\n", scoring.FormatScore(a.flow.Score()))

	// The score is already shown; the save runs in the background and only
	// updates the status line. Revisiting this page never re-submits.
	if a.flow.SaveStatus() == client.SavePending {
		done := make(chan error, 1)
		go func() {
			_, err := a.api.Submit(ctx, a.flow.Token(), a.flow.SubmissionPayload())
			done <- err
		}()
		fmt.Fprintln(a.out, "Saving submission...")
		if err := <-done; err != nil {
			a.flow.SetSaveState(client.SaveFailed)
			fmt.Fprintf(a.out, "Save failed: %v\n", err)
		} else {
			a.flow.SetSaveState(client.SaveSaved)
			fmt.Fprintln(a.out, "Submission saved.")
		}
	}

	choice, err := GetSimpleText(a.reader, "(m)y submissions, (a)ll submissions, (l)ogout, (q)uit", a.out)
	if err != nil {
		return err
	}
	switch strings.ToLower(choice) {
	case "m":
		return a.listSubmissions(ctx, true)
	case "a":
		return a.listSubmissions(ctx, false)
	case "l":
		a.logout()
		return nil
	default:
		return errQuit
	}
}

func (a *App) listSubmissions(ctx context.Context, mine bool) error {
	items, err := a.api.Submissions(ctx, a.flow.Token(), mine)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return nil
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No submissions yet.")
		return nil
	}
	for _, item := range items {
		team, _ := item["teamName"].(string)
		score, _ := item["score"].(float64)
		fmt.Fprintf(a.out, "  %-30s %s\n", team, scoring.FormatScore(score))
	}
	return nil
}

func (a *App) logout() {
	if err := client.ClearToken(); err != nil {
		fmt.Fprintf(a.out, "warning: could not clear session: %v\n", err)
	}
	a.flow.Logout()
	fmt.Fprintln(a.out, "Logged out.")
}
