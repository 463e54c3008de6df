// Package output renders the board for the terminal.
package output

import (
	"fmt"
	"io"
	"strings"

	"kanban/internal/board"
	"kanban/internal/domain"
)

const Separator = "------------"

var columnTitles = map[domain.Status]string{
	domain.StatusTodo:       "To-Do",
	domain.StatusInProgress: "In Progress",
	domain.StatusDone:       "Done",
}

// ColumnTitle returns the display name of a column.
func ColumnTitle(s domain.Status) string {
	if t, ok := columnTitles[s]; ok {
		return t
	}
	return string(s)
}

// RenderBoard writes the header line and the three columns. Cards are
// numbered across the whole board; those numbers are valid card refs.
func RenderBoard(w io.Writer, username string, st board.State) {
	if username != "" {
		fmt.Fprintf(w, "Logged in as: %s\n", username)
	}

	n := 0
	for _, col := range domain.Statuses {
		cards := st.Column(col)
		fmt.Fprintln(w, Separator)
		fmt.Fprintf(w, "%s (%d)\n", ColumnTitle(col), len(cards))
		fmt.Fprintln(w, Separator)
		for _, c := range cards {
			n++
			fmt.Fprintf(w, "%4d  %s\n", n, normalizeText(c.Text))
		}
	}
}

// normalizeText keeps each card on one line.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	if strings.TrimSpace(text) == "" {
		return "(empty)"
	}
	return text
}
