/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package selector asks the operator which services to change.
package selector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	cnserrors "github.com/NVIDIA/devhosts/pkg/errors"
)

// ErrCancelled is returned when the operator aborts the prompt.
var ErrCancelled = cnserrors.New(cnserrors.ErrCodeCancelled, "selection cancelled")

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "select")),
	All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle all")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Quit:    key.NewBinding(key.WithKeys("esc", "ctrl+c", "q"), key.WithHelp("esc", "cancel")),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6BCB77")).MarginBottom(1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD479")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
)

// model is a checkbox list showing every item at once.
type model struct {
	title     string
	items     []string
	checked   []bool
	cursor    int
	done      bool
	cancelled bool
}

func newModel(title string, items []string) *model {
	return &model{
		title:   title,
		items:   items,
		checked: make([]bool, len(items)),
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, keys.Quit):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(km, keys.Confirm):
		m.done = true
		return m, tea.Quit
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Toggle):
		if len(m.items) > 0 {
			m.checked[m.cursor] = !m.checked[m.cursor]
		}
	case key.Matches(km, keys.All):
		all := true
		for _, c := range m.checked {
			all = all && c
		}
		for i := range m.checked {
			m.checked[i] = !all
		}
	}
	return m, nil
}

func (m *model) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		box := "[ ] " + item
		if m.checked[i] {
			box = selectedStyle.Render("[x] " + item)
		}
		b.WriteString(cursor + box + "\n")
	}

	help := []string{}
	for _, k := range []key.Binding{keys.Up, keys.Down, keys.Toggle, keys.All, keys.Confirm, keys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return b.String()
}

// Selected returns the checked items in list order.
func (m *model) Selected() []string {
	var out []string
	for i, item := range m.items {
		if m.checked[i] {
			out = append(out, item)
		}
	}
	return out
}

type options struct {
	in  io.Reader
	out io.Writer
}

// Option configures Select.
type Option func(*options)

// WithInput reads keys from r instead of stdin.
func WithInput(r io.Reader) Option {
	return func(o *options) { o.in = r }
}

// WithOutput renders to w instead of stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// Select prompts for a subset of items and returns it in list order. It
// blocks until the operator confirms, cancels (ErrCancelled) or ctx is done.
func Select(ctx context.Context, title string, items []string, opts ...Option) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}

	o := &options{in: os.Stdin, out: os.Stderr}
	for _, fn := range opts {
		fn(o)
	}

	m := newModel(title, items)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(o.in),
		tea.WithOutput(o.out),
	)

	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, tea.ErrProgramKilled) {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeCancelled, "selection interrupted", err)
		}
		return nil, fmt.Errorf("failed to run selection prompt: %w", err)
	}

	fm, ok := final.(*model)
	if !ok || fm.cancelled {
		return nil, ErrCancelled
	}
	return fm.Selected(), nil
}

// Resolve validates names given on the command line against known. It
// returns them deduplicated, in the order given. Unknown names fail with the
// closest known name as a suggestion.
func Resolve(requested, known []string) ([]string, error) {
	valid := make(map[string]struct{}, len(known))
	for _, k := range known {
		valid[k] = struct{}{}
	}

	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, r := range requested {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := valid[r]; !ok {
			msg := fmt.Sprintf("unknown service %q", r)
			if s := Suggest(r, known); s != "" {
				msg += fmt.Sprintf(", did you mean %q?", s)
			}
			return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, msg)
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

// Suggest returns the known name closest to name, or "" if none is close
// enough to be a plausible typo.
func Suggest(name string, known []string) string {
	best, bestDist := "", -1
	for _, k := range known {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(k))
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}

	limit := len(name) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}
