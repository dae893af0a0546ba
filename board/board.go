// Package board derives kanban state from orders and their workflow. A
// card's column is never stored: it is recomputed from per-step completion
// facts every time, so the only way to move a card is to complete or
// un-complete steps.
package board

import (
	"math"
	"sort"

	"orderdesk/domain"
)

// Progress returns the order's completion percentage, 0..100. A finalized
// order always reports 100, as an explicit override rather than a computed
// average. With no workflow to measure against, the result is 100 for
// finalized orders and 0 otherwise.
func Progress(order domain.Order, workflow *domain.Workflow) int {
	if workflow == nil || len(workflow.Steps) == 0 {
		if order.Finalized() {
			return 100
		}
		return 0
	}

	completed := 0
	for _, step := range workflow.Steps {
		if order.StepCompleted(step.Id) {
			completed++
		}
	}

	if order.Finalized() {
		return 100
	}

	return int(math.Round(100 * float64(completed) / float64(len(workflow.Steps))))
}

// PlaceInColumn returns the column index for the order: one past the
// highest-index completed step, clamped to the last column. An order with no
// completed steps lands in column 0; a finalized order is forced into the
// last column.
func PlaceInColumn(order domain.Order, workflow *domain.Workflow) int {
	if workflow == nil || len(workflow.Steps) == 0 {
		return 0
	}

	last := len(workflow.Steps) - 1
	if order.Finalized() {
		return last
	}

	lastCompleted := -1
	for i := len(workflow.Steps) - 1; i >= 0; i-- {
		if order.StepCompleted(workflow.Steps[i].Id) {
			lastCompleted = i
			break
		}
	}

	target := lastCompleted + 1
	if target > last {
		target = last
	}
	return target
}

// Column is one kanban column: the step it represents and the orders placed
// in it, newest first.
type Column struct {
	Step   domain.Step    `json:"step"`
	Orders []domain.Order `json:"orders"`
}

// Columns builds the kanban board for one workflow: filters orders to those
// referencing it, sorts them newest-first, and distributes them with
// PlaceInColumn. A workflow with zero steps yields a single degenerate
// column holding all of its orders.
func Columns(workflow domain.Workflow, orders []domain.Order) []Column {
	var columns []Column
	if len(workflow.Steps) == 0 {
		columns = []Column{{Step: domain.Step{}, Orders: []domain.Order{}}}
	} else {
		columns = make([]Column, len(workflow.Steps))
		for i, step := range workflow.Steps {
			columns[i] = Column{Step: step, Orders: []domain.Order{}}
		}
	}

	matching := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.WorkflowId == workflow.Id {
			matching = append(matching, o)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].CreatedAt > matching[j].CreatedAt
	})

	for _, o := range matching {
		idx := PlaceInColumn(o, &workflow)
		columns[idx].Orders = append(columns[idx].Orders, o)
	}
	return columns
}
