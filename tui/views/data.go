package views

import (
	"fmt"
	"strings"

	"tui/db"
	"tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dataMsg struct {
	listings []db.ListingRow
	total    int
}

type openHousesMsg struct {
	openHouses []db.OpenHouseRow
}

type Data struct {
	db            *db.Client
	width, height int
	listings      []db.ListingRow
	openHouses    []db.OpenHouseRow
	selectedRow   int
	rentalsOnly   bool
	dbPage        int
	dbPageSize    int
	totalListings int
}

func NewData(dbClient *db.Client) Data {
	return Data{db: dbClient, dbPageSize: 100}
}

func (d Data) Init() tea.Cmd {
	return d.Refresh()
}

func (d Data) Refresh() tea.Cmd {
	return func() tea.Msg {
		listings, _ := d.db.GetListings(d.dbPageSize, d.dbPage*d.dbPageSize, d.rentalsOnly)
		total, _ := d.db.GetListingCount(d.rentalsOnly)
		return dataMsg{listings, total}
	}
}

func (d Data) SetSize(w, h int) Data {
	d.width = w
	d.height = h
	return d
}

func (d Data) GetSelectedURL() string {
	if d.selectedRow < len(d.listings) {
		return d.listings[d.selectedRow].URL
	}
	return ""
}

func (d Data) Update(msg tea.Msg) (Data, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		d.listings = msg.listings
		d.totalListings = msg.total
		if d.selectedRow >= len(d.listings) {
			d.selectedRow = 0
		}
		if len(d.listings) > 0 {
			return d, d.loadOpenHouses(d.listings[d.selectedRow].ID)
		}

	case openHousesMsg:
		d.openHouses = msg.openHouses

	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height - 4

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if d.selectedRow > 0 {
				d.selectedRow--
				return d, d.selectCmd()
			}
		case "down", "j":
			if len(d.listings) > 0 && d.selectedRow < len(d.listings)-1 {
				d.selectedRow++
				return d, d.selectCmd()
			}
		case "pgdown", "ctrl+d":
			if len(d.listings) > 0 {
				d.selectedRow += 10
				if d.selectedRow >= len(d.listings) {
					d.selectedRow = len(d.listings) - 1
				}
				return d, d.selectCmd()
			}
		case "pgup", "ctrl+u":
			if len(d.listings) > 0 {
				d.selectedRow -= 10
				if d.selectedRow < 0 {
					d.selectedRow = 0
				}
				return d, d.selectCmd()
			}
		case "home", "g":
			if len(d.listings) > 0 {
				d.selectedRow = 0
				return d, d.selectCmd()
			}
		case "end", "G":
			if len(d.listings) > 0 {
				d.selectedRow = len(d.listings) - 1
				return d, d.selectCmd()
			}
		case "a":
			d.rentalsOnly = !d.rentalsOnly
			d.selectedRow = 0
			d.dbPage = 0
			return d, d.Refresh()
		case "[":
			if d.dbPage > 0 {
				d.dbPage--
				d.selectedRow = 0
				return d, d.Refresh()
			}
		case "]":
			if d.dbPage < d.getTotalDBPages()-1 {
				d.dbPage++
				d.selectedRow = 0
				return d, d.Refresh()
			}
		}
	}
	return d, nil
}

func (d Data) selectCmd() tea.Cmd {
	if d.selectedRow < len(d.listings) {
		return d.loadOpenHouses(d.listings[d.selectedRow].ID)
	}
	return nil
}

func (d Data) loadOpenHouses(listingID string) tea.Cmd {
	return func() tea.Msg {
		ohs, _ := d.db.GetOpenHouses(listingID)
		return openHousesMsg{ohs}
	}
}

func (d Data) getVisibleRows() int {
	rows := 25
	if d.height > 0 {
		rows = (d.height * 60) / 100
		if rows < 10 {
			rows = 10
		}
	}
	return rows
}

func (d Data) getTotalDBPages() int {
	if d.dbPageSize == 0 || d.totalListings == 0 {
		return 1
	}
	return (d.totalListings + d.dbPageSize - 1) / d.dbPageSize
}

func (d Data) View() string {
	filterStatus := "All"
	if d.rentalsOnly {
		filterStatus = "Rentals only"
	}

	globalPos := d.dbPage*d.dbPageSize + d.selectedRow + 1
	position := fmt.Sprintf("  %d/%d", globalPos, d.totalListings)
	pageInfo := fmt.Sprintf("  Page %d/%d", d.dbPage+1, d.getTotalDBPages())

	header := styles.Title.Render("Listings") +
		styles.StatValue.Render(position) +
		styles.StatLabel.Render(pageInfo) +
		"  " + styles.Muted.Render(fmt.Sprintf("[a] Filter: %s  [[ ]] Prev/Next page", filterStatus))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		d.renderListingsTable(),
		"",
		d.renderBottomPanel(),
	)
}

func (d Data) renderListingsTable() string {
	header := fmt.Sprintf("%-12s %-30s %-14s %10s %4s %4s %-10s %-10s",
		"MLS", "Address", "City", "Price", "Bed", "Bath", "Type", "Status")
	rows := styles.TableHeader.Render(header) + "\n"

	visibleRows := d.getVisibleRows()
	scrollOffset := 0
	if d.selectedRow >= visibleRows {
		scrollOffset = d.selectedRow - visibleRows + 1
	}
	endRow := scrollOffset + visibleRows
	if endRow > len(d.listings) {
		endRow = len(d.listings)
	}

	for i := scrollOffset; i < endRow; i++ {
		l := d.listings[i]
		price := "—"
		if l.Price > 0 {
			if l.IsRental {
				price = fmt.Sprintf("$%.0f/mo", l.Price)
			} else {
				price = fmt.Sprintf("$%.0fK", l.Price/1000)
			}
		}

		row := fmt.Sprintf("%-12s %-30s %-14s %10s %4d %4.1f %-10s %-10s",
			truncate(l.MLSID, 12),
			truncate(l.Address, 30),
			truncate(l.City, 14),
			price,
			l.Beds,
			l.Baths,
			truncate(l.PropertyType, 10),
			truncate(l.Status, 10),
		)

		if i == d.selectedRow {
			rows += styles.TableSelected.Render(row) + "\n"
		} else {
			rows += row + "\n"
		}
	}

	if len(d.listings) > visibleRows {
		rows += styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", scrollOffset+1, endRow, len(d.listings)))
	}
	return rows
}

func (d Data) renderBottomPanel() string {
	detailsBox := styles.CardBorder.Width(d.width/2 - 2).Render(
		styles.Title.Render("Listing Details") + "\n" + d.renderListingDetails(),
	)
	openHouseBox := styles.FeedCardBorder.Width(d.width/2 - 2).Render(
		styles.Title.Render("Open Houses") + "\n" + d.renderOpenHouses(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, detailsBox, openHouseBox)
}

func (d Data) renderListingDetails() string {
	if d.selectedRow >= len(d.listings) {
		return styles.Muted.Render("Select a listing")
	}

	l := d.listings[d.selectedRow]
	lines := []string{
		fmt.Sprintf("MLS#: %s", l.MLSID),
		fmt.Sprintf("Status: %s", l.Status),
		"",
	}

	if l.Description != "" {
		desc := l.Description
		if len(desc) > 200 {
			desc = desc[:200] + "..."
		}
		lines = append(lines, wrapText(desc, d.width/2-6)...)
		lines = append(lines, "")
	}

	if l.AgentName != "" && l.AgentName != " " {
		lines = append(lines, styles.StatLabel.Render("Agent: ")+l.AgentName)
	}
	if l.AgentEmail != "" {
		lines = append(lines, styles.StatLabel.Render("Email: ")+l.AgentEmail)
	}
	if l.OfficeName != "" {
		lines = append(lines, styles.StatLabel.Render("Office: ")+l.OfficeName)
	}
	if l.SyncedAt != nil {
		lines = append(lines, styles.StatLabel.Render("Synced: ")+relativeTime(*l.SyncedAt))
	}

	lines = append(lines, "", styles.Muted.Render(truncate(l.URL, d.width/2-6)))

	return strings.Join(lines, "\n")
}

func (d Data) renderOpenHouses() string {
	if len(d.openHouses) == 0 {
		return styles.Muted.Render("No open houses")
	}

	header := fmt.Sprintf("%-14s %-10s %-10s", "Date", "Start", "End")
	rows := styles.TableHeader.Render(header) + "\n"
	for _, oh := range d.openHouses {
		rows += fmt.Sprintf("%-14s %-10s %-10s\n", oh.Date, oh.StartTime, oh.EndTime)
	}
	return rows
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		width = 40
	}
	var lines []string
	words := strings.Fields(text)
	var line string
	for _, word := range words {
		if len(line)+len(word)+1 > width {
			lines = append(lines, line)
			line = word
		} else {
			if line != "" {
				line += " "
			}
			line += word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
