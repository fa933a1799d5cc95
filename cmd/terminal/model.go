package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/review-scout/internal/app"
	"github.com/sevigo/review-scout/internal/core"
)

const asciiLogo = `
╔══════════════════════════════════════════════════════════════════════════╗
║                                                                          ║
║   ██████╗ ███████╗██╗   ██╗██╗███████╗██╗    ██╗                         ║
║   ██╔══██╗██╔════╝██║   ██║██║██╔════╝██║    ██║                         ║
║   ██████╔╝█████╗  ██║   ██║██║█████╗  ██║ █╗ ██║                         ║
║   ██╔══██╗██╔══╝  ╚██╗ ██╔╝██║██╔══╝  ██║███╗██║                         ║
║   ██║  ██║███████╗ ╚████╔╝ ██║███████╗╚███╔███╔╝  ███████╗ SCOUT        ║
║   ╚═╝  ╚═╝╚══════╝  ╚═══╝  ╚═╝╚══════╝ ╚══╝╚══╝   ╚══════╝              ║
║                                                                          ║
║                 REVIEWER RECOMMENDATION WORKBENCH                        ║
║                                                                          ║
╚══════════════════════════════════════════════════════════════════════════╝
`

type model struct {
	styles styles
	app    *app.App

	// UI Components
	viewport  viewport.Model
	textarea  textarea.Model
	spinner   spinner.Model
	isLoading bool

	// Session State
	selectedRepo   core.RepoID
	repoSelected   bool
	noCache        bool
	history        []string
	availableRepos []string
}

func initialModel(theme ThemeName) *model {
	styles := GetTheme(theme)
	ta := textarea.New()
	ta.Placeholder = "Enter command, e.g. /recommend 42 sofia"
	ta.Focus()
	ta.Prompt = styles.prompt.Render("► ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	return &model{
		styles:    styles,
		textarea:  ta,
		spinner:   sp,
		isLoading: true,
		history:   []string{styles.ascii.Render(asciiLogo), "", "⚙ LOADING CONFIGURATION..."},
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(initializeAppCmd(), m.spinner.Tick)
}

func (m *model) appendHistory(lines ...string) {
	m.history = append(m.history, lines...)
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.app != nil {
				m.app.Stop()
			}
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m, m.processCommand(input)
		}

	case appInitializedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendHistory("", m.styles.error.Render(msg.err.Error()))
			return m, nil
		}
		m.app = msg.app
		return m, loadReposCmd(m.app)

	case reposLoadedMsg:
		if msg.err != nil {
			m.appendHistory("", m.styles.error.Render("Could not discover repositories: "+msg.err.Error()))
		} else {
			m.availableRepos = msg.repos
			m.appendHistory("", m.styles.success.Render("✓ DATA DIRECTORY SCANNED"))
			switch len(m.availableRepos) {
			case 0:
				m.appendHistory(m.styles.inactive.Render("No crawled repositories found."))
			case 1:
				m.appendHistory(m.styles.command.Render("→ Automatically selecting the only repository: "+m.availableRepos[0]))
				return m, m.processCommand("/select " + m.availableRepos[0])
			default:
				m.appendHistory(m.styles.inactive.Render(fmt.Sprintf("%d repositories found. Use '/list' to see them or '/select [name]' to pick one.", len(m.availableRepos))))
			}
		}
		m.appendHistory("", "Type /help for commands.")
		return m, nil

	case corpusCheckedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendHistory("", m.styles.error.Render("CHECK FAILED: "+msg.err.Error()))
			return m, nil
		}
		s := msg.stats
		m.appendHistory("",
			m.styles.success.Render(fmt.Sprintf("✓ CORPUS %s", msg.repo.FullName())),
			fmt.Sprintf("  pull requests: %d   commits: %d   developers: %d", s.PullRequests, s.Commits, s.Developers),
			fmt.Sprintf("  reviews: %d   comments: %d   PRs with reviewers: %d (%.1f%%)", s.Reviews, s.Comments, s.PRsWithTruth, s.ReviewCoverage*100),
		)
		if len(s.Warnings) > 0 {
			m.appendHistory(m.styles.prompt.Render(fmt.Sprintf("  %d data quality warnings, see the log", len(s.Warnings))))
		}
		return m, nil

	case recommendationMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendHistory("", m.styles.error.Render("RECOMMEND FAILED: "+msg.err.Error()))
			return m, nil
		}
		m.appendHistory("", m.styles.success.Render(fmt.Sprintf("✓ %s #%d (%s)", msg.repo.FullName(), msg.prNumber, msg.result.Algorithm)))
		if len(msg.result.Ranking) == 0 {
			m.appendHistory(m.styles.inactive.Render("  no candidates could be scored"))
			return m, nil
		}
		for i, sd := range msg.result.Top(10) {
			m.appendHistory(fmt.Sprintf("  %2d. %-24s %.4f", i+1, sd.Login, sd.Score))
		}
		return m, nil

	case evaluationMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendHistory("", m.styles.error.Render("EVALUATION FAILED: "+msg.err.Error()))
			return m, nil
		}
		m.appendHistory("", m.styles.success.Render(fmt.Sprintf("✓ EVALUATION %s", msg.repo.FullName())),
			"  ALGORITHM      MRR     MAP     DCG     HIT@3")
		for _, r := range msg.reports {
			m.appendHistory(fmt.Sprintf("  %-12s %.4f  %.4f  %.4f  %.4f",
				r.Algorithm, r.MRR, r.MAP, r.AvgDCG, r.HitRateAtK[3]))
		}
		m.appendHistory(m.styles.inactive.Render("  reports written to the output directory"))
		return m, nil

	case errorMsg:
		m.isLoading = false
		m.appendHistory("", m.styles.error.Render("⚠ "+msg.err.Error()))
		return m, nil

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8
		m.textarea.SetWidth(msg.Width - 10)
		m.viewport.SetContent(strings.Join(m.history, "\n"))
	}

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m *model) View() string {
	if m.app == nil {
		return fmt.Sprintf("\n  %s LOADING...\n\n", m.spinner.View())
	}

	var statusParts []string
	if m.repoSelected {
		statusParts = append(statusParts, fmt.Sprintf("REPO: %s", m.selectedRepo.FullName()))
	} else {
		statusParts = append(statusParts, "REPO: None Selected")
	}
	if m.noCache {
		statusParts = append(statusParts, m.styles.prompt.Render("○ CACHE BYPASSED"))
	} else {
		statusParts = append(statusParts, m.styles.success.Render("● CACHE ON"))
	}
	status := m.styles.inactive.Render(strings.Join(statusParts, " │ "))

	var loadingIndicator string
	if m.isLoading {
		loadingIndicator = " " + m.spinner.View() + " " + m.styles.success.Render("WORKING...")
	}

	return m.styles.app.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.styles.viewport.Render(m.viewport.View()),
			"",
			m.styles.footer.Render(
				lipgloss.JoinHorizontal(lipgloss.Left,
					m.textarea.View(),
					loadingIndicator,
				),
			),
			status,
		),
	)
}

func (m *model) processCommand(input string) tea.Cmd {
	m.appendHistory(m.styles.prompt.Render("► ") + input)

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	command := parts[0]
	args := parts[1:]

	switch command {
	case "/select":
		if len(args) != 1 {
			m.appendHistory(m.styles.error.Render("USAGE: /select [owner/repo]"))
			return nil
		}
		repo, err := core.ParseRepoID(args[0])
		if err != nil {
			m.appendHistory(m.styles.error.Render(err.Error()))
			return nil
		}
		if !slices.Contains(m.availableRepos, repo.DirName()) {
			m.appendHistory(m.styles.error.Render(fmt.Sprintf("Repository '%s' not found. Use /list to see available repositories.", args[0])))
			return nil
		}
		m.selectedRepo = repo
		m.repoSelected = true
		m.appendHistory(m.styles.success.Render("✓ Context set to repository: " + repo.FullName()))
		return nil

	case "/list", "/ls":
		if len(m.availableRepos) == 0 {
			m.appendHistory(m.styles.inactive.Render("No crawled repositories found in the data directory."))
			return nil
		}
		var b strings.Builder
		b.WriteString(m.styles.success.Render("AVAILABLE REPOSITORIES:"))
		for _, name := range m.availableRepos {
			marker := m.styles.inactive.Render("○")
			if m.repoSelected && name == m.selectedRepo.DirName() {
				marker = m.styles.success.Render("●")
			}
			b.WriteString(fmt.Sprintf("\n  %s %s", marker, name))
		}
		m.appendHistory(b.String())
		return nil

	case "/check":
		if !m.requireRepo() {
			return nil
		}
		m.isLoading = true
		m.appendHistory(m.styles.command.Render("→ Loading corpus..."))
		return tea.Batch(m.spinner.Tick, checkCorpusCmd(m.app, m.selectedRepo))

	case "/recommend", "/rec":
		if !m.requireRepo() {
			return nil
		}
		if len(args) < 1 {
			m.appendHistory(m.styles.error.Render("USAGE: /recommend [pr-number] [algorithm]"))
			return nil
		}
		prNumber, err := strconv.Atoi(args[0])
		if err != nil {
			m.appendHistory(m.styles.error.Render(fmt.Sprintf("invalid pull request number %q", args[0])))
			return nil
		}
		algorithm := core.AlgoSofia
		if len(args) > 1 {
			algorithm = args[1]
		}
		if !slices.Contains(core.Algorithms(), algorithm) {
			m.appendHistory(m.styles.error.Render(fmt.Sprintf("unknown algorithm %q", algorithm)))
			return nil
		}
		m.isLoading = true
		m.appendHistory(m.styles.command.Render(fmt.Sprintf("→ Scoring #%d with %s...", prNumber, algorithm)))
		return tea.Batch(m.spinner.Tick, recommendCmd(m.app, m.selectedRepo, algorithm, prNumber, m.noCache))

	case "/evaluate", "/eval":
		if !m.requireRepo() {
			return nil
		}
		algorithms := core.Algorithms()
		if len(args) > 0 {
			algorithms = args
			for _, name := range algorithms {
				if !slices.Contains(core.Algorithms(), name) {
					m.appendHistory(m.styles.error.Render(fmt.Sprintf("unknown algorithm %q", name)))
					return nil
				}
			}
		}
		m.isLoading = true
		m.appendHistory(m.styles.command.Render("→ Evaluating " + strings.Join(algorithms, ", ") + "... (this may take a while)"))
		return tea.Batch(m.spinner.Tick, evaluateCmd(m.app, m.selectedRepo, algorithms, m.noCache))

	case "/nocache":
		m.noCache = !m.noCache
		if m.noCache {
			m.appendHistory(m.styles.prompt.Render("Cache bypass ON: every ranking recomputes."))
		} else {
			m.appendHistory(m.styles.success.Render("Cache bypass OFF."))
		}
		return nil

	case "/help", "/h":
		helpText := m.styles.success.Render("AVAILABLE COMMANDS:") + `

  /list, /ls                List crawled repositories.
  /select [owner/repo]      Set the active repository.
  /check                    Load the corpus and show its statistics.
  /recommend [pr] [algo]    Rank reviewers for one pull request.
  /evaluate [algos...]      Evaluate algorithms over the whole repository.
  /nocache                  Toggle score-cache bypass.
  /help                     Show this help message.
  /exit, /quit              Exit.

  ` + m.styles.inactive.Render("Algorithms: revfinder, chrev, turnoverrec, sofia (default)")
		m.appendHistory("", helpText)
		return nil

	case "/exit", "/quit":
		if m.app != nil {
			m.app.Stop()
		}
		return tea.Quit

	default:
		m.appendHistory("", m.styles.error.Render("UNKNOWN COMMAND: "+command), m.styles.inactive.Render("Type /help for assistance."))
		return nil
	}
}

func (m *model) requireRepo() bool {
	if !m.repoSelected {
		m.appendHistory(m.styles.error.Render("No repository is selected. Use '/list' and '/select [owner/repo]' first."))
		return false
	}
	return true
}
