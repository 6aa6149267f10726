package task

// Task is a stored task record.
//
// Stores hand out Task values, never pointers into their own state, so a
// caller mutating a Task changes nothing until it goes back through a store
// operation.
type Task struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
	DueDate Date    `json:"due_date"`
	Rank    int     `json:"rank"`
}

// Draft holds the user-editable fields of a task.
// Create and Update take a Draft; ID and Rank are owned by the store.
type Draft struct {
	Name    string
	Cost    float64
	DueDate Date
}

// NewDraft parses the due date and validates all fields.
// The returned Draft is already normalized.
func NewDraft(name string, cost float64, dueDate string) (Draft, error) {
	due, err := ParseDate(dueDate)
	if err != nil {
		return Draft{}, err
	}
	return Draft{Name: name, Cost: cost, DueDate: due}.Normalize()
}

// Normalize validates the draft and returns a copy with the name in
// canonical form (trimmed, NFC).
func (d Draft) Normalize() (Draft, error) {
	name, err := NormalizeName(d.Name)
	if err != nil {
		return Draft{}, err
	}
	if err := ValidateCost(d.Cost); err != nil {
		return Draft{}, err
	}
	if d.DueDate.IsZero() {
		return Draft{}, NewValidationError("due_date", "due date is required")
	}
	d.Name = name
	return d, nil
}

// Apply returns t with the draft fields copied over. ID and Rank are kept.
func (t Task) Apply(d Draft) Task {
	t.Name = d.Name
	t.Cost = d.Cost
	t.DueDate = d.DueDate
	return t
}
