// Package tui is the interactive lead list. It renders from a shared
// leadstore.Store and turns key presses into store operations.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/leads/internal/model"
	"github.com/Makepad-fr/leads/internal/store/leadstore"
)

// refreshMsg tells the model the store changed. It carries no state: the
// model always re-reads a snapshot, so late or reordered messages are
// harmless.
type refreshMsg struct{}

// listItem adapts a Lead to bubbles/list.Item
type listItem struct{ lead model.Lead }

func (i listItem) FilterValue() string {
	return i.lead.CompanyName + " " + i.lead.CompanyLocation + " " + i.lead.Status()
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

type Model struct {
	ctx   context.Context
	store *leadstore.Store
	state leadstore.State
	now   func() time.Time

	list    list.Model
	spinner spinner.Model
	width   int
	height  int

	// Inline add/edit
	mode    mode
	inputs  []textinput.Model
	focus   int
	editID  int
	formErr string

	// Undo support (single-level, deletes only)
	canUndo  bool
	undoList []model.Lead

	detail bool   // show contacts of the selected lead
	notice string // last action, shown under the list
}

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	l := it.lead
	status := l.Status()
	if status == "" {
		status = "-"
	}
	line := fmt.Sprintf("%s %s %s  %s",
		mutedStyle.Render(fmt.Sprintf("#%-4d", l.ID)),
		l.CompanyName,
		mutedStyle.Render("("+l.CompanyLocation+")"),
		statusStyle.Render(status),
	)
	if n := len(l.Contacts); n > 0 {
		line += mutedStyle.Render(fmt.Sprintf("  ☎ %d", n))
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

var (
	reloadBind = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	undoBind   = key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo"))
	detailBind = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "contacts"))
	quitBind   = key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit"))
)

// New builds the model. Nothing is fetched until Init runs.
func New(ctx context.Context, s *leadstore.Store) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = "Leads"
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("lead", "leads")

	extra := func() []key.Binding {
		return []key.Binding{reloadBind, addBind, editBind, deleteBind, undoBind, detailBind, quitBind}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))

	m := Model{
		ctx:     ctx,
		store:   s,
		now:     time.Now,
		list:    l,
		spinner: sp,
		inputs:  newInputs(),
	}
	m.sync()
	return m
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, s *leadstore.Store) error {
	p := tea.NewProgram(New(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
	// Store changes made inside Update would deadlock a synchronous Send.
	unsubscribe := s.Subscribe(func(leadstore.State) { go p.Send(refreshMsg{}) })
	defer unsubscribe()
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		m.store.Load(m.ctx)
		return refreshMsg{}
	}
}

// sync re-reads the store and rebuilds the list items.
func (m *Model) sync() tea.Cmd {
	m.state = m.store.Snapshot()
	items := make([]list.Item, 0, len(m.state.List))
	for _, l := range m.state.List {
		items = append(items, listItem{lead: l})
	}
	m.list.Title = fmt.Sprintf("Leads  %s %d", accentStyle.Render("Total"), len(m.state.List))
	return m.list.SetItems(items)
}

func (m Model) selected() (model.Lead, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Lead{}, false
	}
	return it.lead, true
}

// Update and View implement Bubble Tea's Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case refreshMsg:
		wasLoading := m.state.Loading
		cmd := m.sync()
		if wasLoading && !m.state.Loading {
			// a finished load replaced the list the undo was taken from
			m.canUndo, m.undoList = false, nil
		}
		return m, cmd
	}

	if m.mode != modeList {
		return m.updateForm(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch km.String() {
		case "q":
			return m, tea.Quit
		case "esc":
			if m.list.FilterState() != list.FilterApplied {
				return m, tea.Quit
			}
		case "r":
			m.canUndo, m.undoList = false, nil
			m.notice = ""
			return m, m.loadCmd()
		case "a":
			return m, m.openForm(modeAdd, model.Lead{})
		case "e":
			if l, ok := m.selected(); ok {
				return m, m.openForm(modeEdit, l)
			}
			return m, nil
		case "d":
			if l, ok := m.selected(); ok {
				m.undoList = m.state.List
				m.canUndo = true
				m.store.Remove(l.ID)
				m.notice = fmt.Sprintf("deleted #%d %s (u to undo)", l.ID, l.CompanyName)
				return m, m.sync()
			}
			return m, nil
		case "u":
			if m.canUndo {
				m.store.ReplaceAll(m.undoList)
				m.canUndo, m.undoList = false, nil
				m.notice = "restored"
				return m, m.sync()
			}
			return m, nil
		case "enter":
			m.detail = !m.detail
			m.resize()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) openForm(md mode, l model.Lead) tea.Cmd {
	m.mode = md
	m.formErr = ""
	m.focus = 0
	m.editID = l.ID
	values := []string{l.CompanyName, l.CompanyLocation, l.Source}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		m.inputs[i].CursorEnd()
		m.inputs[i].Blur()
	}
	m.resize()
	return m.inputs[0].Focus()
}

func (m *Model) closeForm() {
	m.mode = modeList
	m.formErr = ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.resize()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.closeForm()
			return m, nil
		case "tab", "down":
			return m, m.moveFocus(1)
		case "shift+tab", "up":
			return m, m.moveFocus(-1)
		case "enter":
			return m.submitForm()
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := formFromInputs(m.inputs)
	if msg := f.check(); msg != "" {
		m.formErr = msg
		return m, nil
	}
	switch m.mode {
	case modeAdd:
		l := f.newLead(m.state.List, m.now())
		m.store.Add(l)
		m.notice = fmt.Sprintf("added #%d %s (local only)", l.ID, l.CompanyName)
	case modeEdit:
		for _, l := range m.state.List {
			if l.ID == m.editID {
				m.store.Update(f.apply(l))
				m.notice = fmt.Sprintf("updated #%d (local only)", l.ID)
				break
			}
		}
	}
	m.closeForm()
	return m, m.sync()
}

// resize gives the list whatever the status lines, form and detail pane
// leave free.
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	reserved := 4 // frame + status line
	if m.mode != modeList {
		reserved += len(m.inputs) + 3
	}
	if m.detail {
		reserved += 8
	}
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())

	if m.detail && m.mode == modeList {
		if l, ok := m.selected(); ok {
			b.WriteString("\n")
			b.WriteString(boxStyle.Render(contactsView(l)))
		}
	}

	if m.mode != modeList {
		title := "Add lead"
		if m.mode == modeEdit {
			title = fmt.Sprintf("Edit lead #%d", m.editID)
		}
		if m.formErr != "" {
			title += "  " + errorStyle.Render(m.formErr)
		}
		lines := []string{title}
		for _, in := range m.inputs {
			lines = append(lines, in.View())
		}
		lines = append(lines, helpStyle.Render("tab next · enter save · esc cancel"))
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	}
	return boxStyle.Render(b.String())
}

func (m Model) statusLine() string {
	switch {
	case m.state.Loading:
		return m.spinner.View() + " " + mutedStyle.Render("Loading leads...")
	case m.state.Error != "":
		return errorStyle.Render("✖ "+m.state.Error) + mutedStyle.Render("  (r to retry)")
	case m.notice != "":
		return successStyle.Render("✔ " + m.notice)
	default:
		return mutedStyle.Render(fmt.Sprintf("%d leads", len(m.state.List)))
	}
}

func contactsView(l model.Lead) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("#%d %s", l.ID, l.CompanyName))}
	if notes := model.Deref(l.Notes); notes != "" {
		lines = append(lines, mutedStyle.Render(notes))
	}
	if len(l.Contacts) == 0 {
		return strings.Join(append(lines, mutedStyle.Render("no contacts")), "\n")
	}
	for _, c := range l.Contacts {
		parts := []string{model.Deref(c.Name)}
		for _, p := range []*string{c.RoleName, c.Email, c.Phone} {
			if v := model.Deref(p); v != "" {
				parts = append(parts, v)
			}
		}
		lines = append(lines, "☎ "+strings.Join(parts, " · "))
	}
	return strings.Join(lines, "\n")
}
