package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/upload"
)

const uploadTimeout = 2 * time.Minute

type uploadState int

const (
	uploadStatePick uploadState = iota
	uploadStateConfirm
	uploadStateUploading
	uploadStateResult
)

type UploadModel struct {
	CommonModel
	uploadService *upload.Service

	state      uploadState
	filePicker filepicker.Model
	form       *huh.Form
	path       string
	confirmed  *bool // shared with the form across the model copies bubbletea makes

	status string
	err    error
}

func NewUploadModel(uploadSvc *upload.Service) UploadModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.Height = 15

	return UploadModel{
		uploadService: uploadSvc,
		filePicker:    fp,
	}
}

func (m UploadModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case uploadResultMsg:
		m.state = uploadStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Uploaded %s\n\nfile id:        %s\ncorrelation id: %s",
			msg.file.Name, msg.file.ID, msg.correlationID)

		return m, nil
	}

	switch m.state {
	case uploadStatePick:
		return m.updatePick(msg)
	case uploadStateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m UploadModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case uploadStateConfirm, uploadStateResult:
		m.state = uploadStatePick
		m.form = nil
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m UploadModel) updatePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		m.confirmed = new(bool)
		m.state = uploadStateConfirm

		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Key("upload").
					Title(fmt.Sprintf("Upload %s for processing?", filepath.Base(path))).
					Affirmative("Upload").
					Negative("Cancel").
					Value(m.confirmed),
			),
		).WithWidth(50).WithShowHelp(false)

		return m, m.form.Init()
	}

	return m, cmd
}

func (m UploadModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.confirmed {
		m.state = uploadStatePick
		m.form = nil

		return m, m.filePicker.Init()
	}

	m.state = uploadStateUploading
	m.status = fmt.Sprintf("Uploading %s...", filepath.Base(m.path))

	return m, m.uploadCmd(m.path)
}

func (m UploadModel) View() string {
	switch m.state {
	case uploadStatePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a CNAB file to upload:\n\n%s", m.filePicker.View()),
		)
	case uploadStateConfirm:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(2).Render(m.form.View())
	case uploadStateUploading:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case uploadStateResult:
		return m.viewResult()
	}

	return ""
}

func (m UploadModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	return style.Render(
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status) +
			"\n\n(Esc to go back)",
	)
}

// Messages

type uploadResultMsg struct {
	file          *file.File
	correlationID string
	err           error
}

func (m UploadModel) uploadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadResultMsg{err: err}
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return uploadResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()

		uploaded, correlationID, err := m.uploadService.Upload(ctx, filepath.Base(path), info.Size(), f)
		if err != nil {
			return uploadResultMsg{err: err}
		}

		return uploadResultMsg{file: uploaded, correlationID: correlationID}
	}
}
