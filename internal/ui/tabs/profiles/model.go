// Package profiles provides the profiles tab: the GitHub logins whose stats
// can be shown, and which one is active.
package profiles

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/langstats-tui/internal/app"
	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/services"
	"github.com/j-veylop/langstats-tui/internal/ui/styles"
)

// envProfileID marks the profile synthesized from GITHUB_USERNAME.
const envProfileID = "env"

// formField represents which field is currently focused in the add form.
type formField int

const (
	fieldLogin formField = iota
	fieldLabel
	fieldToken
	fieldSubmit
	fieldCancel
	fieldCount
)

// keyMap defines the key bindings specific to the profiles tab.
type keyMap struct {
	Enter  key.Binding
	Delete key.Binding
	Add    key.Binding
	Escape key.Binding
}

// defaultKeyMap returns the default key bindings for the profiles tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "activate"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Add: key.NewBinding(
			key.WithKeys("n", "a"),
			key.WithHelp("n", "add profile"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the profiles tab state.
type Model struct {
	state         *app.State
	services      *services.Manager
	table         table.Model
	profiles      []models.Profile
	loginInput    textinput.Model
	labelInput    textinput.Model
	tokenInput    textinput.Model
	keys          keyMap
	deleteTarget  models.Profile
	formError     string
	width         int
	height        int
	focusedField  formField
	adding        bool
	confirmDelete bool
}

// New creates a new profiles model.
func New(state *app.State, svc *services.Manager) *Model {
	loginInput := textinput.New()
	loginInput.Placeholder = "octocat"
	loginInput.CharLimit = 39
	loginInput.Width = 40

	labelInput := textinput.New()
	labelInput.Placeholder = "Optional display name"
	labelInput.CharLimit = 60
	labelInput.Width = 40

	tokenInput := textinput.New()
	tokenInput.Placeholder = "Optional personal access token"
	tokenInput.CharLimit = 255
	tokenInput.Width = 40
	tokenInput.EchoMode = textinput.EchoPassword

	t := table.New(
		table.WithColumns(columns(30)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgLight).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:      state,
		services:   svc,
		table:      t,
		loginInput: loginInput,
		labelInput: labelInput,
		tokenInput: tokenInput,
		keys:       defaultKeyMap(),
	}
}

func columns(loginWidth int) []table.Column {
	return []table.Column{
		{Title: "Login", Width: loginWidth},
		{Title: "Label", Width: 20},
		{Title: "Token", Width: 8},
		{Title: "Added", Width: 16},
		{Title: "Status", Width: 8},
	}
}

// Init initializes the profiles tab.
func (m *Model) Init() tea.Cmd {
	m.syncProfiles()
	return nil
}

// CapturingInput reports whether key presses belong to the form or the
// delete prompt rather than to the global bindings.
func (m *Model) CapturingInput() bool {
	return m.adding || m.confirmDelete
}

// Update handles messages for the profiles tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if _, ok := msg.(app.ProfilesLoadedMsg); ok {
		m.syncProfiles()
		return m, nil
	}

	if m.adding {
		return m.updateAddForm(msg)
	}
	if m.confirmDelete {
		return m.updateDeleteConfirm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Enter):
		if p, ok := m.selected(); ok && !p.IsActive {
			return m, m.run(func(mgr *services.Manager) tea.Cmd {
				return app.ActivateProfileCmd(mgr, p.ID)
			})
		}

	case key.Matches(keyMsg, m.keys.Delete):
		if p, ok := m.selected(); ok {
			if p.ID == envProfileID {
				return m, app.NotifyInfo("This login comes from GITHUB_USERNAME and cannot be deleted here")
			}
			m.confirmDelete = true
			m.deleteTarget = p
		}

	case key.Matches(keyMsg, m.keys.Add):
		m.openForm()
		return m, textinput.Blink

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(keyMsg)
		return m, cmd
	}

	return m, nil
}

// run builds a profile command, or reports that no manager is wired.
func (m *Model) run(build func(mgr *services.Manager) tea.Cmd) tea.Cmd {
	if m.services == nil {
		return app.NotifyError("Services not initialized")
	}
	return build(m.services)
}

func (m *Model) openForm() {
	m.adding = true
	m.formError = ""
	m.focusedField = fieldLogin
	m.loginInput.SetValue("")
	m.labelInput.SetValue("")
	m.tokenInput.SetValue("")
	m.updateFormFocus()
}

func (m *Model) closeForm() {
	m.adding = false
	m.formError = ""
	m.loginInput.Blur()
	m.labelInput.Blur()
	m.tokenInput.Blur()
}

// updateAddForm handles the add profile form.
func (m *Model) updateAddForm(msg tea.Msg) (app.Tab, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.closeForm()
			return m, nil

		case "tab", "down":
			m.focusedField = (m.focusedField + 1) % fieldCount
			m.updateFormFocus()
			return m, textinput.Blink

		case "shift+tab", "up":
			m.focusedField = (m.focusedField - 1 + fieldCount) % fieldCount
			m.updateFormFocus()
			return m, textinput.Blink

		case "enter":
			switch m.focusedField {
			case fieldCancel:
				m.closeForm()
				return m, nil
			case fieldSubmit, fieldToken:
				return m, m.submit()
			default:
				m.focusedField++
				m.updateFormFocus()
				return m, textinput.Blink
			}
		}
	}

	var cmd tea.Cmd
	switch m.focusedField {
	case fieldLogin:
		m.loginInput, cmd = m.loginInput.Update(msg)
	case fieldLabel:
		m.labelInput, cmd = m.labelInput.Update(msg)
	case fieldToken:
		m.tokenInput, cmd = m.tokenInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	login := strings.TrimPrefix(strings.TrimSpace(m.loginInput.Value()), "@")
	if login == "" {
		m.formError = "Login is required"
		m.focusedField = fieldLogin
		m.updateFormFocus()
		return nil
	}
	for _, p := range m.profiles {
		if p.ID != envProfileID && strings.EqualFold(p.Login, login) {
			m.formError = "A profile for " + login + " already exists"
			return nil
		}
	}

	label := m.labelInput.Value()
	token := m.tokenInput.Value()
	m.closeForm()
	return m.run(func(mgr *services.Manager) tea.Cmd {
		return app.AddProfileCmd(mgr, login, label, token)
	})
}

// updateDeleteConfirm handles the delete confirmation.
func (m *Model) updateDeleteConfirm(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		target := m.deleteTarget
		m.confirmDelete = false
		m.deleteTarget = models.Profile{}
		return m, m.run(func(mgr *services.Manager) tea.Cmd {
			return app.RemoveProfileCmd(mgr, target.ID)
		})
	case "n", "N", "esc":
		m.confirmDelete = false
		m.deleteTarget = models.Profile{}
	}
	return m, nil
}

// updateFormFocus updates which form field is focused.
func (m *Model) updateFormFocus() {
	m.loginInput.Blur()
	m.labelInput.Blur()
	m.tokenInput.Blur()

	switch m.focusedField {
	case fieldLogin:
		m.loginInput.Focus()
	case fieldLabel:
		m.labelInput.Focus()
	case fieldToken:
		m.tokenInput.Focus()
	}
}

func (m *Model) selected() (models.Profile, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.profiles) {
		return models.Profile{}, false
	}
	return m.profiles[i], true
}

// syncProfiles copies the profile list from the shared state into the table.
func (m *Model) syncProfiles() {
	m.profiles = m.state.GetProfiles()

	rows := make([]table.Row, 0, len(m.profiles))
	for _, p := range m.profiles {
		token := "-"
		if p.Token != "" {
			token = "yes"
		}
		added := "-"
		if !p.AddedAt.IsZero() {
			added = humanize.Time(p.AddedAt)
		}
		if p.ID == envProfileID {
			added = "environment"
		}
		status := ""
		if p.IsActive {
			status = "* active"
		}
		rows = append(rows, table.Row{"@" + p.Login, p.Label, token, added, status})
	}
	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// SetSize sets the available size for the profiles tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-10, 3))
	m.table.SetColumns(columns(min(max(width-70, 16), 40)))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.adding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
			m.keys.Escape,
		}
	}
	return []key.Binding{m.keys.Enter, m.keys.Delete, m.keys.Add}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Enter, m.keys.Delete},
		{m.keys.Add, m.keys.Escape},
	}
}
