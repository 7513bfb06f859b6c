// Package tui renders the board, calendar and notes view models for a
// terminal. Rendering never mutates state.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/arrangemylist/planner/internal/application/calendar"
	"github.com/arrangemylist/planner/internal/domain/entities"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	todayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	columnStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241"))
	cellStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, true, true, false).
			BorderForeground(lipgloss.Color("238"))
	noteStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())
)

// ColumnWidth is the inner width of a board column
const ColumnWidth = 28

// CellWidth is the inner width of a month grid cell
const CellWidth = 14

var columnTitles = map[entities.TaskStatus]string{
	entities.TaskStatusTodo:       "To Do",
	entities.TaskStatusInProgress: "In Progress",
	entities.TaskStatusDone:       "Done",
}

// RenderBoard draws the three columns side by side with their counts
func RenderBoard(groups entities.TaskGroups, palette calendar.Palette) string {
	columns := make([]string, 0, len(entities.Statuses))
	for _, status := range entities.Statuses {
		tasks := groups.Column(status)

		lines := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", columnTitles[status], len(tasks))), ""}
		if len(tasks) == 0 {
			lines = append(lines, statusStyle.Render("(empty)"))
		}
		for _, t := range tasks {
			lines = append(lines, renderCard(t, palette))
		}

		columns = append(columns, columnStyle.Width(ColumnWidth).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func renderCard(t entities.Task, palette calendar.Palette) string {
	color, ok := palette.TaskPriority[t.Priority]
	if !ok {
		color = palette.TaskFallback
	}
	badge := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")

	card := fmt.Sprintf("%s #%d %s", badge, t.ID, truncate(t.Title, ColumnWidth-8))
	if t.DueDate != nil {
		card += "\n" + statusStyle.Render("  due "+t.DueDate.Format(calendar.DateLayout))
	}
	return card
}

// RenderMonth draws a month grid. Each cell shows the rendered items of its
// day, already capped with "+N more".
func RenderMonth(view calendar.MonthView) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(view.Title()))
	b.WriteString("\n\n")

	header := make([]string, 0, 7)
	for _, d := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		header = append(header, statusStyle.Width(CellWidth+1).Render(" "+d))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	for _, week := range view.Weeks() {
		cells := make([]string, 0, len(week))
		for _, cell := range week {
			cells = append(cells, renderCell(cell))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}

func renderCell(cell calendar.Cell) string {
	day := fmt.Sprintf("%2d", cell.Day)
	switch {
	case cell.Today:
		day = todayStyle.Render(day + " *")
	case !cell.InMonth:
		day = statusStyle.Render(day)
	}

	lines := []string{day}
	for _, item := range cell.Items {
		lines = append(lines, renderItem(item, CellWidth-2))
	}
	return cellStyle.Width(CellWidth).Height(calendar.RenderLimit + 2).Render(strings.Join(lines, "\n"))
}

func renderItem(item calendar.Item, width int) string {
	if item.Type == calendar.ItemMore {
		return statusStyle.Render(item.Title)
	}
	label := truncate(item.Icon+" "+item.Title, width)
	if item.Color == "" {
		return label
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(item.Color)).Render(label)
}

// RenderDay lists every item of a day, with no cap
func RenderDay(day calendar.DayView) string {
	lines := []string{titleStyle.Render(day.Date)}
	if day.Len() == 0 {
		lines = append(lines, statusStyle.Render("Nothing scheduled"))
	}
	for _, item := range day.Items {
		lines = append(lines, fmt.Sprintf("%s  #%d %s", renderItem(item, ColumnWidth*2), item.ID, statusStyle.Render(string(item.Action.Kind))))
	}
	return strings.Join(lines, "\n")
}

// RenderNotes draws notes in display order, pinned ones marked
func RenderNotes(notes []entities.Note, palette calendar.Palette) string {
	if len(notes) == 0 {
		return statusStyle.Render("No notes yet")
	}

	blocks := make([]string, 0, len(notes))
	for _, n := range notes {
		color, ok := palette.NoteColors[n.Color]
		if !ok {
			color = palette.NoteFallback
		}

		heading := fmt.Sprintf("#%d %s", n.ID, n.Title)
		if n.IsPinned {
			heading = "📌 " + heading
		}
		body := titleStyle.Render(truncate(heading, ColumnWidth*2))
		if n.Content != "" {
			body += "\n" + n.Content
		}
		body += "\n" + statusStyle.Render("updated "+n.UpdatedAt.Format("2006-01-02 15:04"))

		blocks = append(blocks, noteStyle.BorderForeground(lipgloss.Color(color)).Width(ColumnWidth*2).Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
