// Package schema implements the workflow schema editor: mutations over a
// local working copy of one workflow. Nothing touches storage here; the
// caller persists the edited copy with an explicit save, and abandoning the
// editor discards every change.
package schema

import (
	"fmt"
	"strings"
	"time"

	"orderdesk/domain"
)

const (
	newStepTitle  = "New step"
	newFieldLabel = "New field"
)

// Editor holds a deep working copy of a workflow and applies edits to it.
type Editor struct {
	workflow domain.Workflow

	// nowMillis stamps generated field names; overridable in tests.
	nowMillis func() int64
}

func NewEditor(workflow domain.Workflow) *Editor {
	return &Editor{
		workflow:  cloneWorkflow(workflow),
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}
}

// Workflow returns the current state of the working copy.
func (e *Editor) Workflow() domain.Workflow {
	return cloneWorkflow(e.workflow)
}

// Rename sets the workflow name.
func (e *Editor) Rename(name string) {
	e.workflow.Name = name
}

// AddStep appends a new step with a placeholder title and no fields.
func (e *Editor) AddStep() domain.Step {
	step := domain.Step{
		Id:     domain.NewId("step"),
		Title:  newStepTitle,
		Fields: []domain.Field{},
	}
	e.workflow.Steps = append(e.workflow.Steps, step)
	return step
}

// UpdateStep sets the title of the given step. Unknown step ids are no-ops.
func (e *Editor) UpdateStep(stepId, title string) {
	for i := range e.workflow.Steps {
		if e.workflow.Steps[i].Id == stepId {
			e.workflow.Steps[i].Title = title
		}
	}
}

// RemoveStep deletes the step. Orders keep whatever data they stored under
// the removed step's id; it simply stops rendering.
func (e *Editor) RemoveStep(stepId string) {
	steps := e.workflow.Steps[:0]
	for _, s := range e.workflow.Steps {
		if s.Id != stepId {
			steps = append(steps, s)
		}
	}
	e.workflow.Steps = steps
}

// AddField appends a field with default settings to the given step. The
// generated name is derived from the creation timestamp; two fields created
// in the same millisecond can collide, which matches the original scheme.
func (e *Editor) AddField(stepId string) domain.Field {
	field := domain.Field{
		Id:       domain.NewId("field"),
		Name:     fmt.Sprintf("field_%d", e.nowMillis()),
		Label:    newFieldLabel,
		Type:     domain.FieldTypeText,
		Required: false,
		Width:    domain.FieldWidthHalf,
	}
	for i := range e.workflow.Steps {
		if e.workflow.Steps[i].Id == stepId {
			e.workflow.Steps[i].Fields = append(e.workflow.Steps[i].Fields, field)
		}
	}
	return field
}

// UpdateField replaces the field with the same id within the given step.
func (e *Editor) UpdateField(stepId string, field domain.Field) {
	for i := range e.workflow.Steps {
		if e.workflow.Steps[i].Id != stepId {
			continue
		}
		for j := range e.workflow.Steps[i].Fields {
			if e.workflow.Steps[i].Fields[j].Id == field.Id {
				e.workflow.Steps[i].Fields[j] = cloneField(field)
			}
		}
	}
}

// RemoveField deletes the field from the given step.
func (e *Editor) RemoveField(stepId, fieldId string) {
	for i := range e.workflow.Steps {
		if e.workflow.Steps[i].Id != stepId {
			continue
		}
		fields := e.workflow.Steps[i].Fields[:0]
		for _, f := range e.workflow.Steps[i].Fields {
			if f.Id != fieldId {
				fields = append(fields, f)
			}
		}
		e.workflow.Steps[i].Fields = fields
	}
}

// ReorderField moves the dragged field to the target field's position within
// one step: splice-remove then insert. A drop target in a different step than
// the drag origin is a no-op, as are unknown ids.
func (e *Editor) ReorderField(stepId, fromFieldId, toFieldId string) {
	step := e.workflow.FindStep(stepId)
	if step == nil {
		return
	}

	fromIdx, toIdx := -1, -1
	for i, f := range step.Fields {
		if f.Id == fromFieldId {
			fromIdx = i
		}
		if f.Id == toFieldId {
			toIdx = i
		}
	}
	if fromIdx == -1 || toIdx == -1 {
		return
	}

	moved := step.Fields[fromIdx]
	fields := append(step.Fields[:fromIdx], step.Fields[fromIdx+1:]...)
	fields = append(fields, domain.Field{})
	copy(fields[toIdx+1:], fields[toIdx:])
	fields[toIdx] = moved
	step.Fields = fields
}

// ParseOptions splits a comma-delimited options string the way the editor UI
// does. There is no escaping: a literal comma inside an option value cannot
// be represented.
func ParseOptions(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	options := make([]string, len(parts))
	for i, p := range parts {
		options[i] = strings.TrimSpace(p)
	}
	return options
}

// JoinOptions is the inverse of ParseOptions for editing.
func JoinOptions(options []string) string {
	return strings.Join(options, ",")
}

func cloneWorkflow(w domain.Workflow) domain.Workflow {
	out := domain.Workflow{Id: w.Id, Name: w.Name}
	out.Steps = make([]domain.Step, len(w.Steps))
	for i, s := range w.Steps {
		step := domain.Step{Id: s.Id, Title: s.Title}
		step.Fields = make([]domain.Field, len(s.Fields))
		for j, f := range s.Fields {
			step.Fields[j] = cloneField(f)
		}
		out.Steps[i] = step
	}
	return out
}

func cloneField(f domain.Field) domain.Field {
	if f.Options != nil {
		f.Options = append([]string(nil), f.Options...)
	}
	return f
}
