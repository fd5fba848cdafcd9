package internal

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"site_blocker/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type MsgTick struct{}

// MsgServerError carries a control API failure into the UI.
type MsgServerError struct {
	Err error
}

// Controller is the command surface the terminal UI drives.
type Controller interface {
	StartBlocking(ctx context.Context, minutes float64) (session.BlockingSession, error)
	TempUnblock(ctx context.Context, minutes float64) (session.BlockingSession, error)
	Resume(ctx context.Context) (session.BlockingSession, error)
	GetStatus(ctx context.Context) (session.BlockingSession, error)
}

// Defaults used when the minutes field is left empty.
type Defaults struct {
	BlockMinutes float64
	PauseMinutes float64
}

type Model struct {
	Status       session.BlockingSession
	MinutesInput string
	Err          error
	Defaults     Defaults
	Sites        []string

	// Length of the pause in progress, for the pause progress bar. It is
	// not stored, so after a restart it is taken from the first observation.
	pauseTotal time.Duration
	pauseEnd   time.Time

	ctrl Controller
	now  func() time.Time
}

func NewModel(ctrl Controller, defaults Defaults, sites []string) (*Model, error) {
	status, err := ctrl.GetStatus(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	m := &Model{
		Status:   status,
		Defaults: defaults,
		Sites:    sites,
		ctrl:     ctrl,
		now:      time.Now,
	}
	m.trackPause()
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		m.refresh()
		return m, nil
	case MsgServerError:
		m.Err = fmt.Errorf("control API stopped: %w", msg.Err)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	switch m.Status.State() {
	case session.StatePaused:
		return m.pausedView()
	case session.StateBlocking:
		return m.blockingView()
	default:
		return m.unblockedView()
	}
}

func (m *Model) refresh() {
	status, err := m.ctrl.GetStatus(context.Background())
	if err != nil {
		m.Err = err
		return
	}
	m.Status = status
	m.trackPause()
}

func (m *Model) trackPause() {
	if m.Status.State() != session.StatePaused {
		m.pauseTotal = 0
		m.pauseEnd = time.Time{}
		return
	}
	end := *m.Status.TempUnblockEndTime
	if !end.Equal(m.pauseEnd) {
		m.pauseEnd = end
		m.pauseTotal = max(end.Sub(m.now()), time.Second)
	}
}

// Submit runs the command the current state offers: start a session when
// unblocked, otherwise pause or extend the pause.
func (m *Model) Submit() {
	minutes, err := m.parseMinutes()
	if err != nil {
		m.Err = err
		return
	}

	ctx := context.Background()
	var status session.BlockingSession
	if m.Status.IsBlocking {
		status, err = m.ctrl.TempUnblock(ctx, minutes)
	} else {
		status, err = m.ctrl.StartBlocking(ctx, minutes)
	}
	if err != nil {
		m.Err = err
		m.refresh()
		return
	}

	m.Err = nil
	m.MinutesInput = ""
	m.Status = status
	m.trackPause()
}

func (m *Model) ResumeNow() {
	status, err := m.ctrl.Resume(context.Background())
	if err != nil {
		m.Err = err
		m.refresh()
		return
	}
	m.Err = nil
	m.Status = status
	m.trackPause()
}

func (m *Model) parseMinutes() (float64, error) {
	if m.MinutesInput == "" {
		if m.Status.IsBlocking {
			return m.Defaults.PauseMinutes, nil
		}
		return m.Defaults.BlockMinutes, nil
	}
	v, err := strconv.ParseFloat(m.MinutesInput, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("please enter a valid number of minutes")
	}
	return v, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "enter":
		m.Submit()
	case "r":
		if m.Status.State() == session.StatePaused {
			m.ResumeNow()
		}
	case "backspace":
		if len(m.MinutesInput) > 0 {
			m.MinutesInput = m.MinutesInput[:len(m.MinutesInput)-1]
		}
	default:
		runes := []rune(msg.String())
		if len(runes) == 1 && len(m.MinutesInput) < 6 {
			if (runes[0] >= '0' && runes[0] <= '9') || runes[0] == '.' {
				m.MinutesInput += string(runes[0])
			}
		}
	}
	return m, nil
}
