package views

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"tui/db"
	"tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dashboardDataMsg struct {
	feeds        []db.FeedStats
	runs         []db.SyncRun
	listingCount int
	rentalCount  int
	agentCount   int
	officeCount  int
	photoQueue   int
	syncRunning  bool
}

type logTailMsg struct {
	lines        []string
	modTime      time.Time
	daemonActive bool
}

type Dashboard struct {
	db            *db.Client
	width, height int
	feeds         []db.FeedStats
	runs          []db.SyncRun
	listingCount  int
	rentalCount   int
	agentCount    int
	officeCount   int
	photoQueue    int
	syncRunning   bool
	logLines      []string
	logPath       string
	logScroll     int // scroll offset (0 = bottom/newest)
	logViewport   int
	logBuffer     int
	logModTime    time.Time
	daemonActive  bool
}

func NewDashboard(dbClient *db.Client, logPath string) Dashboard {
	if logPath == "" {
		logPath = "daemon.log"
	}
	return Dashboard{
		db:          dbClient,
		logPath:     logPath,
		logViewport: 25,
		logBuffer:   200,
	}
}

func (d Dashboard) Init() tea.Cmd {
	return tea.Batch(d.Refresh(), d.tailLog())
}

func (d Dashboard) Refresh() tea.Cmd {
	return func() tea.Msg {
		feeds, _ := d.db.GetFeedStats()
		runs, _ := d.db.GetRecentRuns(10)
		listingCount, _ := d.db.GetListingCount(false)
		rentalCount, _ := d.db.GetListingCount(true)
		agentCount, _ := d.db.GetAgentCount()
		officeCount, _ := d.db.GetOfficeCount()
		photoQueue, _ := d.db.GetPhotoQueueCount()
		running, _ := d.db.IsSyncRunning()
		return dashboardDataMsg{feeds, runs, listingCount, rentalCount, agentCount, officeCount, photoQueue, running}
	}
}

func (d Dashboard) RefreshLog() tea.Cmd {
	return d.tailLog()
}

func (d Dashboard) tailLog() tea.Cmd {
	return func() tea.Msg {
		lines, modTime := readLastLines(d.logPath, d.logBuffer)
		return logTailMsg{lines, modTime, isDaemonActive()}
	}
}

func isDaemonActive() bool {
	out, err := exec.Command("systemctl", "is-active", "feedsyncd").Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "active"
}

func readLastLines(path string, n int) ([]string, time.Time) {
	info, err := os.Stat(path)
	if err != nil {
		return []string{"(no log file)"}, time.Time{}
	}
	modTime := info.ModTime()

	f, err := os.Open(path)
	if err != nil {
		return []string{"(no log file)"}, time.Time{}
	}
	defer f.Close()

	var allLines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		allLines = append(allLines, scanner.Text())
	}

	if len(allLines) == 0 {
		return []string{"(empty log)"}, modTime
	}

	start := len(allLines) - n
	if start < 0 {
		start = 0
	}
	return allLines[start:], modTime
}

func (d Dashboard) SetSize(w, h int) Dashboard {
	d.width = w
	d.height = h
	return d
}

func (d Dashboard) Update(msg tea.Msg) (Dashboard, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.feeds = msg.feeds
		d.runs = msg.runs
		d.listingCount = msg.listingCount
		d.rentalCount = msg.rentalCount
		d.agentCount = msg.agentCount
		d.officeCount = msg.officeCount
		d.photoQueue = msg.photoQueue
		d.syncRunning = msg.syncRunning
		return d, d.tailLog()
	case logTailMsg:
		d.logLines = msg.lines
		d.logModTime = msg.modTime
		d.daemonActive = msg.daemonActive
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height - 4
	case tea.KeyMsg:
		maxScroll := len(d.logLines) - d.logViewport
		if maxScroll < 0 {
			maxScroll = 0
		}
		switch msg.String() {
		case "up", "k":
			d.logScroll++
			if d.logScroll > maxScroll {
				d.logScroll = maxScroll
			}
		case "down", "j":
			d.logScroll--
			if d.logScroll < 0 {
				d.logScroll = 0
			}
		case "pgup":
			d.logScroll += 10
			if d.logScroll > maxScroll {
				d.logScroll = maxScroll
			}
		case "pgdown":
			d.logScroll -= 10
			if d.logScroll < 0 {
				d.logScroll = 0
			}
		case "home":
			d.logScroll = maxScroll
		case "end":
			d.logScroll = 0
		}
	}
	return d, nil
}

func (d Dashboard) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("Dashboard"),
		d.renderStatCards(),
		"",
		d.renderFeedCards(),
		"",
		styles.Title.Render("Recent Runs"),
		d.renderRunsTable(),
		"",
		d.renderLogTail(),
	)
}

func (d Dashboard) renderStatCards() string {
	cards := []string{
		d.renderStatCard("Listings", fmt.Sprintf("%d", d.listingCount)),
		d.renderStatCard("Rentals", fmt.Sprintf("%d", d.rentalCount)),
		d.renderStatCard("Agents", fmt.Sprintf("%d", d.agentCount)),
		d.renderStatCard("Offices", fmt.Sprintf("%d", d.officeCount)),
		d.renderStatCard("Photo Q", fmt.Sprintf("%d", d.photoQueue)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (d Dashboard) renderStatCard(label, value string) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.StatValue.Render(value),
		styles.StatLabel.Render(label),
	)
	return styles.CardBorder.Width(14).Render(content)
}

func (d Dashboard) renderFeedCards() string {
	if len(d.feeds) == 0 {
		return styles.Muted.Render("No feeds configured")
	}

	var cards []string
	for _, f := range d.feeds {
		cards = append(cards, d.renderFeedCard(f))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (d Dashboard) renderFeedCard(f db.FeedStats) string {
	status := "○ never run"
	statusStyle := styles.StatusPending
	if f.LastRunStatus != nil {
		switch *f.LastRunStatus {
		case "completed":
			status = "✓ completed"
			statusStyle = styles.StatusSuccess
		case "failed":
			status = "✗ failed"
			statusStyle = styles.StatusError
		case "running":
			status = "◐ running"
			statusStyle = styles.StatusPending
		}
	}

	lastRun := "never"
	if f.LastRunAt != nil {
		lastRun = relativeTime(*f.LastRunAt)
	}
	nextRun := "-"
	if f.NextRunAt != nil {
		nextRun = f.NextRunAt.Format("01-02 15:04")
	}
	schedule := f.Frequency
	if !f.ScheduleEnabled {
		schedule = "disabled"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.StatValue.Render(f.Slug),
		statusStyle.Render(status),
		styles.StatLabel.Render(fmt.Sprintf("Sched: %s", schedule)),
		styles.StatLabel.Render(fmt.Sprintf("Last: %s", lastRun)),
		styles.StatLabel.Render(fmt.Sprintf("Next: %s", nextRun)),
		styles.StatLabel.Render(fmt.Sprintf("Rate: %.0f%%", f.SuccessRate*100)),
	)
	return styles.FeedCardBorder.Width(24).Render(content)
}

func (d Dashboard) renderRunsTable() string {
	if len(d.runs) == 0 {
		return styles.Muted.Render("No runs yet")
	}

	header := fmt.Sprintf("%-12s %-10s %-10s %-10s %5s %5s %6s %6s",
		"Feed", "Status", "Trigger", "Started", "New", "Upd", "Photos", "Errors")
	rows := styles.TableHeader.Render(header) + "\n"

	for _, r := range d.runs {
		statusStyle := styles.StatusPending
		switch r.Status {
		case "completed":
			statusStyle = styles.StatusSuccess
		case "failed":
			statusStyle = styles.StatusError
		}

		row := fmt.Sprintf("%-12s %s %-10s %-10s %5d %5d %6d %6d",
			truncate(r.FeedSlug, 12),
			statusStyle.Render(fmt.Sprintf("%-10s", r.Status)),
			truncate(r.Trigger, 10),
			r.StartedAt.Format("15:04:05"),
			r.Created,
			r.Updated,
			r.Photos,
			r.Errors,
		)
		rows += row + "\n"
	}
	return rows
}

func (d Dashboard) renderLogTail() string {
	if len(d.logLines) == 0 {
		content := styles.Muted.Render("(waiting for logs...)")
		return styles.LogBox.Width(d.width - 4).Render(content)
	}

	total := len(d.logLines)
	endIdx := total - d.logScroll
	startIdx := endIdx - d.logViewport
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx > total {
		endIdx = total
	}

	maxLineWidth := d.width - 8
	var lines []string
	for _, line := range d.logLines[startIdx:endIdx] {
		lines = append(lines, d.styleLogLine(line, maxLineWidth))
	}
	content := strings.Join(lines, "\n")

	scrollInfo := ""
	if !d.daemonActive {
		scrollInfo = styles.StatusError.Render(" ● STOPPED ")
	} else if d.logScroll > 0 {
		scrollInfo = styles.StatusPending.Render(fmt.Sprintf(" ↑%d ", d.logScroll))
	} else {
		scrollInfo = styles.StatusSuccess.Render(" ● LIVE ")
	}

	header := styles.Title.Render("Live Log") + scrollInfo +
		styles.Muted.Render(fmt.Sprintf("[%d-%d/%d]", startIdx+1, endIdx, total))

	return styles.LogBox.Width(d.width - 4).Render(header + "\n" + content)
}

func (d Dashboard) styleLogLine(line string, maxWidth int) string {
	line = truncate(line, maxWidth)

	// Timestamp prefix format: 2024/01/25 10:30:45
	if len(line) > 19 && (line[4] == '/' || line[10] == ' ') {
		timestamp := line[:19]
		rest := line[19:]

		styledTs := styles.LogTimestamp.Render(timestamp)

		if strings.Contains(rest, "ERROR") || strings.Contains(rest, "error") {
			return styledTs + styles.StatusError.Render(rest)
		} else if strings.Contains(rest, "WARN") || strings.Contains(rest, "warn") {
			return styledTs + styles.StatusPending.Render(rest)
		}
		return styledTs + rest
	}

	if strings.Contains(line, "ERROR") || strings.Contains(line, "error") {
		return styles.StatusError.Render(line)
	} else if strings.Contains(line, "WARN") || strings.Contains(line, "warn") {
		return styles.StatusPending.Render(line)
	}
	return line
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return s[:max-1] + "…"
}
