// Package client implements the bid simulation client: a small HTTP API
// client plus the selection flow that drives a user from login to a scored,
// saved submission.
package client

import (
	"errors"

	"github.com/cld-events/bidsim-api/internal/scoring"
)

// Page identifies one screen of the selection flow.
type Page string

const (
	PageLogin    Page = "login"
	PageSignup   Page = "signup"
	PageTeam     Page = "team"
	PageBids     Page = "bids"
	PageDatasets Page = "datasets"
	PageCredits  Page = "credits"
	PageResults  Page = "results"
)

// SaveState tracks the asynchronous submission save independently of the
// displayed score: the score never blocks on, or reverts with, the save.
type SaveState string

const (
	SaveIdle    SaveState = "idle"
	SavePending SaveState = "pending"
	SaveSaved   SaveState = "saved"
	SaveFailed  SaveState = "failed"
)

const (
	minBids      = 4
	datasetCount = 5
)

var (
	// ErrTooFewBids refuses the bids→datasets transition.
	ErrTooFewBids = errors.New("select at least 4 algorithms")
	// ErrDatasetCount refuses the datasets→credits transition.
	ErrDatasetCount = errors.New("select exactly 5 datasets")
	// ErrDatasetCap refuses adding a dataset beyond the cap.
	ErrDatasetCap = errors.New("you can only choose 5 datasets")
	// ErrBadTransition guards page-specific operations.
	ErrBadTransition = errors.New("not allowed from this page")
)

// Flow is the client-side state machine:
// login → signup (optional) → team → bids → datasets → credits → results.
// A valid stored token at startup resumes directly at team.
type Flow struct {
	page      Page
	token     string
	TeamName  string
	Credits   string
	bids      []scoring.Bid
	datasets  []string
	score     float64
	saveState SaveState
}

// NewFlow starts the flow, resuming at team setup when a stored token exists.
func NewFlow(storedToken string) *Flow {
	f := &Flow{page: PageLogin, token: storedToken, saveState: SaveIdle}
	if storedToken != "" {
		f.page = PageTeam
	}
	return f
}

func (f *Flow) Page() Page            { return f.page }
func (f *Flow) Token() string         { return f.token }
func (f *Flow) Score() float64        { return f.score }
func (f *Flow) SaveStatus() SaveState { return f.saveState }
func (f *Flow) Bids() []scoring.Bid   { return f.bids }
func (f *Flow) Datasets() []string    { return f.datasets }

// GoToSignup and GoToLogin move freely between the two entry pages.
func (f *Flow) GoToSignup() { f.page = PageSignup }
func (f *Flow) GoToLogin()  { f.page = PageLogin }

// LoginSucceeded stores the session token and enters team setup.
func (f *Flow) LoginSucceeded(token string) {
	f.token = token
	f.page = PageTeam
}

// SignupSucceeded returns to the login page; the new account signs in there.
func (f *Flow) SignupSucceeded() {
	f.page = PageLogin
}

// ContinueToBids leaves team setup. An empty team name is allowed here; it
// defaults to a placeholder at submission time, not at this transition.
func (f *Flow) ContinueToBids() {
	f.page = PageBids
}

func (f *Flow) BackToTeam()     { f.page = PageTeam }
func (f *Flow) BackToBids()     { f.page = PageBids }
func (f *Flow) BackToDatasets() { f.page = PageDatasets }

// ToggleBid flips the selection state of one catalog entry: selecting the
// same (tier, item) twice cancels out.
func (f *Flow) ToggleBid(tier, item int) {
	for i, b := range f.bids {
		if b.Tier == tier && b.Item == item {
			f.bids = append(f.bids[:i], f.bids[i+1:]...)
			return
		}
	}
	f.bids = append(f.bids, scoring.Bid{Tier: tier, Item: item})
}

// BidSelected reports whether (tier, item) is currently selected.
func (f *Flow) BidSelected(tier, item int) bool {
	for _, b := range f.bids {
		if b.Tier == tier && b.Item == item {
			return true
		}
	}
	return false
}

// ToggleDataset adds or removes a dataset by name. Removal is always allowed;
// adding beyond the cap is refused and leaves the selection unchanged.
func (f *Flow) ToggleDataset(name string) error {
	for i, d := range f.datasets {
		if d == name {
			f.datasets = append(f.datasets[:i], f.datasets[i+1:]...)
			return nil
		}
	}
	if len(f.datasets) >= datasetCount {
		return ErrDatasetCap
	}
	f.datasets = append(f.datasets, name)
	return nil
}

// ContinueToDatasets gates bids→datasets on the minimum pick count.
func (f *Flow) ContinueToDatasets() error {
	if len(f.bids) < minBids {
		return ErrTooFewBids
	}
	f.page = PageDatasets
	return nil
}

// ContinueToCredits gates datasets→credits on the exact dataset count.
func (f *Flow) ContinueToCredits() error {
	if len(f.datasets) != datasetCount {
		return ErrDatasetCount
	}
	f.page = PageCredits
	return nil
}

// CalculateScore computes the score from the current selections, marks the
// save as pending and shows the results page. The save itself runs
// asynchronously; its outcome is reported through SetSaveState and never
// changes the displayed score.
func (f *Flow) CalculateScore() float64 {
	f.score = scoring.Score(f.bids, f.datasets, scoring.ParseCredits(f.Credits))
	f.saveState = SavePending
	f.page = PageResults
	return f.score
}

// SetSaveState records the asynchronous save outcome.
func (f *Flow) SetSaveState(s SaveState) {
	f.saveState = s
}

// SubmissionPayload builds the document sent to the server. An empty team
// name falls back to a placeholder here, at submission time.
func (f *Flow) SubmissionPayload() map[string]interface{} {
	teamName := f.TeamName
	if teamName == "" {
		teamName = "Unnamed"
	}

	bids := make([]map[string]int, 0, len(f.bids))
	for _, b := range f.bids {
		bids = append(bids, map[string]int{"tier": b.Tier, "item": b.Item})
	}

	return map[string]interface{}{
		"teamName":     teamName,
		"selectedBids": bids,
		"selectedData": f.datasets,
		"credits":      scoring.ParseCredits(f.Credits),
		"score":        f.score,
	}
}

// Logout drops the token and every in-progress selection and returns to the
// login page. Selections do not survive a logout/login cycle.
func (f *Flow) Logout() {
	f.token = ""
	f.TeamName = ""
	f.Credits = ""
	f.bids = nil
	f.datasets = nil
	f.score = 0
	f.saveState = SaveIdle
	f.page = PageLogin
}
