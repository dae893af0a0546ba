package board

import (
	"fmt"
	"testing"

	"orderdesk/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoStepWorkflow() domain.Workflow {
	return domain.Workflow{
		Id:   "wf_1",
		Name: "Imports",
		Steps: []domain.Step{
			{Id: "s1", Title: "Intake", Fields: []domain.Field{{Id: "f1", Name: "f1", Type: domain.FieldTypeText, Required: true}}},
			{Id: "s2", Title: "Shipping", Fields: []domain.Field{}},
		},
	}
}

func orderWithCompleted(workflowId string, stepIds ...string) domain.Order {
	o := domain.Order{
		Id:         domain.NewId("order"),
		WorkflowId: workflowId,
		CreatedAt:  domain.NowISO(),
		StepsData:  map[string]domain.StepState{},
	}
	for _, id := range stepIds {
		o.StepsData[id] = domain.StepState{Data: map[string]any{}, CompletedAt: domain.NowISO()}
	}
	return o
}

func TestProgress(t *testing.T) {
	wf := twoStepWorkflow()

	t.Run("empty steps_data is zero", func(t *testing.T) {
		o := orderWithCompleted("wf_1")
		assert.Equal(t, 0, Progress(o, &wf))
	})

	t.Run("one of two steps is fifty", func(t *testing.T) {
		o := orderWithCompleted("wf_1", "s1")
		assert.Equal(t, 50, Progress(o, &wf))
	})

	t.Run("all steps is one hundred", func(t *testing.T) {
		o := orderWithCompleted("wf_1", "s1", "s2")
		assert.Equal(t, 100, Progress(o, &wf))
	})

	t.Run("started but incomplete step does not count", func(t *testing.T) {
		o := orderWithCompleted("wf_1")
		o.StepsData["s1"] = domain.StepState{Data: map[string]any{"f1": "x"}}
		assert.Equal(t, 0, Progress(o, &wf))
	})

	t.Run("finalized overrides computed progress", func(t *testing.T) {
		o := orderWithCompleted("wf_1")
		o.IsFinalized = true
		assert.Equal(t, 100, Progress(o, &wf))
	})

	t.Run("completed status overrides too", func(t *testing.T) {
		o := orderWithCompleted("wf_1", "s1")
		o.Status = domain.OrderStatusCompleted
		assert.Equal(t, 100, Progress(o, &wf))
	})

	t.Run("missing workflow", func(t *testing.T) {
		o := orderWithCompleted("wf_1", "s1", "s2")
		assert.Equal(t, 0, Progress(o, nil))
		o.IsFinalized = true
		assert.Equal(t, 100, Progress(o, nil))
	})

	t.Run("rounding", func(t *testing.T) {
		wf3 := domain.Workflow{Id: "wf_3", Steps: []domain.Step{{Id: "a"}, {Id: "b"}, {Id: "c"}}}
		o := orderWithCompleted("wf_3", "a")
		assert.Equal(t, 33, Progress(o, &wf3))
		o = orderWithCompleted("wf_3", "a", "b")
		assert.Equal(t, 67, Progress(o, &wf3))
	})
}

func TestProgressIsMonotonic(t *testing.T) {
	steps := make([]domain.Step, 7)
	for i := range steps {
		steps[i] = domain.Step{Id: fmt.Sprintf("s%d", i)}
	}
	wf := domain.Workflow{Id: "wf_m", Steps: steps}

	o := orderWithCompleted("wf_m")
	prev := Progress(o, &wf)
	for _, step := range steps {
		o.StepsData[step.Id] = domain.StepState{Data: map[string]any{}, CompletedAt: domain.NowISO()}
		cur := Progress(o, &wf)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, 100, prev)
}

func TestPlaceInColumn(t *testing.T) {
	wf := twoStepWorkflow()

	t.Run("no completed steps lands in first column", func(t *testing.T) {
		o := orderWithCompleted("wf_1")
		assert.Equal(t, 0, PlaceInColumn(o, &wf))
	})

	t.Run("after first step moves to second column", func(t *testing.T) {
		o := orderWithCompleted("wf_1", "s1")
		assert.Equal(t, 1, PlaceInColumn(o, &wf))
	})

	t.Run("all steps completed clamps to last column", func(t *testing.T) {
		o := orderWithCompleted("wf_1", "s1", "s2")
		assert.Equal(t, 1, PlaceInColumn(o, &wf))
	})

	t.Run("highest completed step wins even with gaps", func(t *testing.T) {
		o := orderWithCompleted("wf_1", "s2")
		assert.Equal(t, 1, PlaceInColumn(o, &wf))
	})

	t.Run("finalized forces last column", func(t *testing.T) {
		o := orderWithCompleted("wf_1")
		o.IsFinalized = true
		assert.Equal(t, 1, PlaceInColumn(o, &wf))
	})

	t.Run("zero steps", func(t *testing.T) {
		empty := domain.Workflow{Id: "wf_e"}
		o := orderWithCompleted("wf_e")
		assert.Equal(t, 0, PlaceInColumn(o, &empty))
	})
}

func TestPlaceInColumnAlwaysInRange(t *testing.T) {
	for stepCount := 0; stepCount <= 5; stepCount++ {
		steps := make([]domain.Step, stepCount)
		for i := range steps {
			steps[i] = domain.Step{Id: fmt.Sprintf("s%d", i)}
		}
		wf := domain.Workflow{Id: "wf_r", Steps: steps}

		for mask := 0; mask < 1<<stepCount; mask++ {
			o := orderWithCompleted("wf_r")
			for i := 0; i < stepCount; i++ {
				if mask&(1<<i) != 0 {
					o.StepsData[steps[i].Id] = domain.StepState{CompletedAt: domain.NowISO()}
				}
			}
			idx := PlaceInColumn(o, &wf)
			assert.GreaterOrEqual(t, idx, 0)
			if stepCount == 0 {
				assert.Equal(t, 0, idx)
			} else {
				assert.Less(t, idx, stepCount)
			}
		}
	}
}

func TestColumns(t *testing.T) {
	wf := twoStepWorkflow()

	fresh := orderWithCompleted("wf_1")
	fresh.CreatedAt = "2024-03-02T10:00:00.000Z"
	moved := orderWithCompleted("wf_1", "s1")
	moved.CreatedAt = "2024-03-01T10:00:00.000Z"
	otherWorkflow := orderWithCompleted("wf_other")
	newest := orderWithCompleted("wf_1")
	newest.CreatedAt = "2024-03-03T10:00:00.000Z"

	columns := Columns(wf, []domain.Order{fresh, moved, otherWorkflow, newest})

	require.Len(t, columns, 2)
	require.Len(t, columns[0].Orders, 2)
	assert.Equal(t, newest.Id, columns[0].Orders[0].Id, "newest order first")
	assert.Equal(t, fresh.Id, columns[0].Orders[1].Id)
	require.Len(t, columns[1].Orders, 1)
	assert.Equal(t, moved.Id, columns[1].Orders[0].Id)
}

func TestColumnsZeroStepWorkflow(t *testing.T) {
	wf := domain.Workflow{Id: "wf_z", Name: "Empty"}
	a := orderWithCompleted("wf_z")
	b := orderWithCompleted("wf_z")
	b.IsFinalized = true

	columns := Columns(wf, []domain.Order{a, b})

	require.Len(t, columns, 1)
	assert.Len(t, columns[0].Orders, 2)
}
