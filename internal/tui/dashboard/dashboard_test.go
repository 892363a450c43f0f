package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"forgectl/internal/gitea"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

// stubForge serves canned data to the dashboard.
type stubForge struct {
	repos    []gitea.Repository
	pulls    []gitea.PullRequest
	reposErr error
}

func (s *stubForge) ListMyRepositories(context.Context) ([]gitea.Repository, error) {
	return s.repos, s.reposErr
}

func (s *stubForge) ListPullRequests(_ context.Context, owner, repo, state string) ([]gitea.PullRequest, error) {
	return s.pulls, nil
}

func (s *stubForge) GetPullRequest(_ context.Context, owner, repo string, number int64) (gitea.PullRequest, error) {
	for _, pull := range s.pulls {
		if pull.Number == number {
			return pull, nil
		}
	}
	return gitea.PullRequest{}, errors.New("no such pull request")
}

func testForge() *stubForge {
	return &stubForge{
		repos: []gitea.Repository{
			{
				Name:        "widgets",
				FullName:    "bob/widgets",
				Owner:       gitea.User{Login: "bob"},
				Description: "widget factory",
			},
		},
		pulls: []gitea.PullRequest{
			{
				Number: 5,
				Title:  "Add sprocket support",
				Body:   "Adds the sprocket module.",
				State:  "open",
				User:   gitea.User{Login: "alice"},
				Head:   gitea.PRBranch{Ref: "feature/sprockets"},
				Base:   gitea.PRBranch{Ref: "main"},
			},
		},
	}
}

func waitForString(t *testing.T, tm *teatest.TestModel, s string) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(),
		func(b []byte) bool {
			return strings.Contains(string(b), s)
		},
		teatest.WithCheckInterval(time.Millisecond*100),
		teatest.WithDuration(time.Second*3),
	)
}

func TestDashboardShowsRepositories(t *testing.T) {
	model := NewModel(testForge(), 0, true, nil)
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	waitForString(t, tm, "bob/widgets")

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second*3))
}

func TestDashboardDrillsIntoPullRequests(t *testing.T) {
	model := NewModel(testForge(), 0, true, nil)
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	waitForString(t, tm, "bob/widgets")

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitForString(t, tm, "#5 Add sprocket support")

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitForString(t, tm, "State: open")

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second*3))
}

func TestDashboardShowsLoadError(t *testing.T) {
	forge := testForge()
	forge.reposErr = errors.New("server unreachable")

	model := NewModel(forge, 0, true, nil)
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	waitForString(t, tm, "server unreachable")

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second*3))
}

func TestFetchPRsDisabledKeepsRepoView(t *testing.T) {
	forge := testForge()
	model := NewModel(forge, 0, false, nil)

	updated, _ := model.Update(reposLoadedMsg{repos: forge.repos})
	m := updated.(Model)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.state != StateRepos {
		t.Errorf("state after enter = %v, want StateRepos when PR fetching is off", m.state)
	}
	if cmd != nil {
		t.Error("no load command should fire when PR fetching is off")
	}
}

func TestEscapeWalksBackThroughStates(t *testing.T) {
	model := NewModel(testForge(), 0, true, nil)
	model.state = StateDetail

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m := updated.(Model)
	if m.state != StatePulls {
		t.Errorf("state after esc from detail = %v, want StatePulls", m.state)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.state != StateRepos {
		t.Errorf("state after esc from pulls = %v, want StateRepos", m.state)
	}
}

func TestErrorStateClearsOnEscape(t *testing.T) {
	model := NewModel(testForge(), 0, true, nil)

	updated, _ := model.Update(reposLoadedMsg{err: errors.New("boom")})
	m := updated.(Model)
	if m.state != StateError {
		t.Fatalf("state after failed load = %v, want StateError", m.state)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.state != StateRepos || m.err != nil {
		t.Errorf("state = %v err = %v, want StateRepos with nil error", m.state, m.err)
	}
}

func TestRefreshTickRearmsWithoutFetching(t *testing.T) {
	model := NewModel(testForge(), time.Minute, true, nil)

	updated, cmd := model.Update(refreshTickMsg(time.Now()))
	m := updated.(Model)
	if m.state != StateRepos {
		t.Errorf("state changed on refresh tick: %v", m.state)
	}
	if cmd == nil {
		t.Error("refresh tick should re-arm the timer")
	}
}

func TestZeroRefreshDisablesTimer(t *testing.T) {
	model := NewModel(testForge(), 0, true, nil)
	if cmd := model.scheduleRefresh(); cmd != nil {
		t.Error("zero refresh interval should not arm a timer")
	}
}
