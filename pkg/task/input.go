package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Draft is the input for creating a task. Only Title is required.
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Completed   bool       `json:"completed,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Normalize trims the title and fills in the default priority.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	return d
}

// Validate checks the draft without modifying it.
func (d Draft) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(d.Title) == "" {
		fields["title"] = msgTitleRequired
	}
	if d.Priority != "" && !d.Priority.Valid() {
		fields["priority"] = msgPriorityInvalid
	}
	return newValidationError(fields)
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	DueDate     NullTime  `json:"dueDate,omitzero"`
}

// Validate rejects patches that would leave a task without a title or with
// an unknown priority.
func (p Patch) Validate() error {
	fields := map[string]string{}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		fields["title"] = msgTitleRequired
	}
	if p.Priority != nil && !p.Priority.Valid() {
		fields["priority"] = msgPriorityInvalid
	}
	return newValidationError(fields)
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.Completed == nil && !p.DueDate.Set
}

// Apply writes the patch onto t. Titles are stored trimmed.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Time
	}
}

// PatchFromDraft builds a patch that overwrites every editable field except
// completion with the draft's values, the way an edit form submits.
func PatchFromDraft(d Draft) Patch {
	d = d.Normalize()
	return Patch{
		Title:       &d.Title,
		Description: &d.Description,
		Priority:    &d.Priority,
		DueDate:     NullTime{Set: true, Time: d.DueDate},
	}
}

// NullTime is a tri-state time used by Patch: unset leaves the field alone,
// set with a nil Time clears it.
type NullTime struct {
	Set  bool
	Time *time.Time
}

// IsZero lets omitzero drop an unset value from JSON output.
func (n NullTime) IsZero() bool { return !n.Set }

// MarshalJSON writes null for a cleared value.
func (n NullTime) MarshalJSON() ([]byte, error) {
	if n.Time == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Time)
}

// UnmarshalJSON marks the value as set; null clears it.
func (n *NullTime) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Time = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return fmt.Errorf("dueDate: %w", err)
	}
	n.Time = &t
	return nil
}

const (
	msgTitleRequired   = "Title is required"
	msgPriorityInvalid = "Priority must be one of low, medium, high"
)

// ValidationError carries per-field messages for input rejected before it
// reaches a store.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func newValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Error lists the field messages sorted by field name.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
