// Copyright 2025 The GlowGrid Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/glowgrid/DimmerWorker/model"
)

// API provides the read-only worker snapshot rendered by the dashboard.
type API interface {
	Status() model.WorkerStatus
}

const refreshInterval = time.Millisecond * 100

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// Root is the terminal dashboard: one brightness bar per channel,
// refreshed from the worker's read-only status snapshot.
type Root struct {
	api    API
	width  int
	status model.WorkerStatus
	bars   []progress.Model
}

var _ tea.Model = Root{}

// New creates the dashboard model for the given worker.
func New(api API) Root {
	status := api.Status()
	bars := make([]progress.Model, len(status.Channels))
	for i := range bars {
		bars[i] = progress.New(progress.WithDefaultGradient())
	}
	return Root{
		api:    api,
		status: status,
		bars:   bars,
	}
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (r Root) Init() tea.Cmd {
	return doRefresh()
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (r Root) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		r.status = r.api.Status()
		return r, doRefresh()
	case tea.WindowSizeMsg:
		r.width = msg.Width
		for i := range r.bars {
			r.bars[i].Width = msg.Width - 40
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return r, tea.Quit
		}
	}
	return r, nil
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (r Root) View() string {
	s := r.headerView()
	for i, ch := range r.status.Channels {
		if i >= len(r.bars) {
			break
		}
		pct := 0.0
		if ch.Period > 0 {
			pct = float64(ch.Duty) / float64(ch.Period)
		}
		s += fmt.Sprintf("%-12s %s %5d/%-5d %s\n",
			ch.ID,
			r.bars[i].ViewAs(pct),
			ch.Duty, ch.Period,
			dimStyle.Render(fmt.Sprintf("cycles %d", ch.CompletedCycles)))
	}
	s += dimStyle.Render("q - Quit") + "\n"
	return s
}

func (r Root) headerView() string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("GlowGrid Dimmer Worker "),
		dimStyle.Render(fmt.Sprintf("%s, %d Hz, started %s",
			r.status.Version, r.status.TickFrequency, r.status.Started)),
	) + "\n\n"
}

type refreshMsg time.Time

func doRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// Run the dashboard until the given context is canceled or the user
// quits.
func Run(ctx context.Context, api API) error {
	p := tea.NewProgram(New(api), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
