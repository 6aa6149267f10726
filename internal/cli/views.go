package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/roach88/tarefas/internal/task"
)

// taskTable renders a task list as aligned columns. JSON output is the
// plain array.
type taskTable []task.Task

func (t taskTable) RenderText(w io.Writer) error {
	if len(t) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tCOST\tDUE")
	for _, tk := range t {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", tk.Rank, tk.ID, tk.Name, formatCost(tk.Cost), tk.DueDate)
	}
	return tw.Flush()
}

// taskView renders one task as key/value lines.
type taskView task.Task

func (t taskView) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", t.ID)
	fmt.Fprintf(tw, "name:\t%s\n", t.Name)
	fmt.Fprintf(tw, "cost:\t%s\n", formatCost(t.Cost))
	fmt.Fprintf(tw, "due_date:\t%s\n", t.DueDate)
	fmt.Fprintf(tw, "rank:\t%d\n", t.Rank)
	return tw.Flush()
}

// messageView is a one-line confirmation.
type messageView struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func (m messageView) RenderText(w io.Writer) error {
	_, err := fmt.Fprintln(w, m.Message)
	return err
}

// nameCheckView reports whether a name is free.
type nameCheckView struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

func (n nameCheckView) RenderText(w io.Writer) error {
	state := "available"
	if !n.Available {
		state = "taken"
	}
	_, err := fmt.Fprintf(w, "%q is %s\n", n.Name, state)
	return err
}

// importView summarizes a bulk import.
type importView struct {
	File    string      `json:"file"`
	Created int         `json:"created"`
	Tasks   []task.Task `json:"tasks"`
}

func (v importView) RenderText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Imported %d task(s) from %s\n", v.Created, v.File); err != nil {
		return err
	}
	return taskTable(v.Tasks).RenderText(w)
}

func formatCost(c float64) string {
	return strconv.FormatFloat(c, 'f', 2, 64)
}
