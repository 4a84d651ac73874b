package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/transaction"
)

type dashboardFocus int

const (
	focusFiles dashboardFocus = iota
	focusStores
)

type DashboardModel struct {
	CommonModel
	fileService *file.Service
	txService   *transaction.Service

	focus       dashboardFocus
	filesTable  table.Model
	storesTable table.Model

	loading bool
	err     error
}

func NewDashboardModel(fileSvc *file.Service, txSvc *transaction.Service) DashboardModel {
	filesTable := newDashboardTable([]table.Column{
		{Title: "Name", Width: 26},
		{Title: "Status", Width: 10},
		{Title: "Txs", Width: 6},
		{Title: "Uploaded", Width: 12},
		{Title: "Error", Width: 30},
	})
	filesTable.Focus()

	storesTable := newDashboardTable([]table.Column{
		{Title: "Store", Width: 20},
		{Title: "Owner", Width: 16},
		{Title: "Balance", Width: 12},
	})

	return DashboardModel{
		fileService: fileSvc,
		txService:   txSvc,
		filesTable:  filesTable,
		storesTable: storesTable,
		loading:     true,
	}
}

func newDashboardTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDashboardMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.refreshTables(msg.files, msg.balances)

		return m, nil

	case tea.WindowSizeMsg:
		m.filesTable.SetHeight(msg.Height - 14)
		m.storesTable.SetHeight(msg.Height - 14)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "tab":
			m.toggleFocus()
			return m, nil
		}
	}

	var cmd tea.Cmd

	switch m.focus {
	case focusFiles:
		m.filesTable, cmd = m.filesTable.Update(msg)
	case focusStores:
		m.storesTable, cmd = m.storesTable.Update(msg)
	}

	return m, cmd
}

func (m *DashboardModel) toggleFocus() {
	if m.focus == focusFiles {
		m.focus = focusStores
		m.filesTable.Blur()
		m.storesTable.Focus()

		return
	}

	m.focus = focusFiles
	m.storesTable.Blur()
	m.filesTable.Focus()
}

func (m *DashboardModel) refreshTables(files []*file.File, balances []*transaction.StoreBalance) {
	fileRows := make([]table.Row, 0, len(files))
	for _, f := range files {
		errMsg := ""
		if f.ErrorMessage != nil {
			errMsg = *f.ErrorMessage
		}

		fileRows = append(fileRows, table.Row{
			f.Name,
			string(f.Status),
			fmt.Sprintf("%d", f.TransactionCount),
			FormatDate(f.UploadedAt),
			errMsg,
		})
	}
	m.filesTable.SetRows(fileRows)

	storeRows := make([]table.Row, 0, len(balances))
	for _, b := range balances {
		storeRows = append(storeRows, table.Row{
			b.Store.Name,
			b.Store.OwnerName,
			FormatAmount(b.BalanceCents),
		})
	}
	m.storesTable.SetRows(storeRows)
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	filesPanel := m.panel("Files", m.filesTable.View(), m.focus == focusFiles)
	storesPanel := m.panel("Store Balances", m.storesTable.View(), m.focus == focusStores)

	help := lipgloss.NewStyle().Faint(true).
		Render("Tab: switch | r: refresh | Esc: back")

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, filesPanel, " ", storesPanel),
			help,
		),
	)
}

func (m DashboardModel) panel(title, body string, focused bool) string {
	borderColor := lipgloss.Color("240")
	if focused {
		borderColor = lipgloss.Color("63")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingBottom(1).Render(title),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(borderColor).
			Render(body),
	)
}

// Messages

type loadDashboardMsg struct {
	files    []*file.File
	balances []*transaction.StoreBalance
	err      error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		files, err := m.fileService.List(ctx, file.ListFilter{})
		if err != nil {
			return loadDashboardMsg{err: err}
		}

		balances, err := m.txService.ListStoreBalances(ctx)
		if err != nil {
			return loadDashboardMsg{err: err}
		}

		return loadDashboardMsg{files: files, balances: balances}
	}
}
