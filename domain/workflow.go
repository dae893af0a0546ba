package domain

import "context"

// Step is a named ordered sequence of fields. Field order is significant: it
// determines both form layout and, via the step's position in the workflow,
// kanban column identity.
type Step struct {
	Id     string  `json:"id"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Workflow is a user-authored schema: an ordered sequence of steps defining
// the kanban column order and the linear progression orders are expected to
// follow. Workflows are never versioned; edits apply immediately to how
// existing orders render, but never to their stored data.
type Workflow struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// FindStep returns the step with the given id, or nil if absent.
func (w *Workflow) FindStep(stepId string) *Step {
	for i := range w.Steps {
		if w.Steps[i].Id == stepId {
			return &w.Steps[i]
		}
	}
	return nil
}

// WorkflowStorage defines the interface for workflow-related database operations
type WorkflowStorage interface {
	PersistWorkflow(ctx context.Context, workflow Workflow) error
	GetWorkflow(ctx context.Context, workflowId string) (Workflow, error)
	GetAllWorkflows(ctx context.Context) ([]Workflow, error)
	DeleteWorkflow(ctx context.Context, workflowId string) error
	ReplaceAllWorkflows(ctx context.Context, workflows []Workflow) error
}
