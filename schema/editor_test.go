package schema

import (
	"testing"

	"orderdesk/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkflow() domain.Workflow {
	return domain.Workflow{
		Id:   "wf_1",
		Name: "Imports",
		Steps: []domain.Step{
			{
				Id:    "step_1",
				Title: "Intake",
				Fields: []domain.Field{
					{Id: "field_a", Name: "customer_name", Label: "Customer", Type: domain.FieldTypeText, Required: true, Width: domain.FieldWidthHalf},
					{Id: "field_b", Name: "incoterms", Label: "Incoterms", Type: domain.FieldTypeSelect, Width: domain.FieldWidthHalf, Options: []string{"EXW", "FOB"}},
					{Id: "field_c", Name: "products_list", Label: "Products", Type: domain.FieldTypeProduct, Required: true, Width: domain.FieldWidthFull},
				},
			},
			{Id: "step_2", Title: "Shipping", Fields: []domain.Field{}},
		},
	}
}

func TestEditorWorksOnACopy(t *testing.T) {
	original := testWorkflow()
	editor := NewEditor(original)

	editor.Rename("Changed")
	editor.UpdateStep("step_1", "Changed step")
	editor.RemoveField("step_1", "field_a")

	assert.Equal(t, "Imports", original.Name)
	assert.Equal(t, "Intake", original.Steps[0].Title)
	assert.Len(t, original.Steps[0].Fields, 3)

	edited := editor.Workflow()
	assert.Equal(t, "Changed", edited.Name)
	assert.Equal(t, "Changed step", edited.Steps[0].Title)
	assert.Len(t, edited.Steps[0].Fields, 2)
}

func TestAddStepDefaults(t *testing.T) {
	editor := NewEditor(testWorkflow())

	step := editor.AddStep()

	wf := editor.Workflow()
	require.Len(t, wf.Steps, 3)
	assert.Equal(t, step.Id, wf.Steps[2].Id)
	assert.NotEmpty(t, step.Id)
	assert.Empty(t, wf.Steps[2].Fields)
}

func TestAddFieldDefaults(t *testing.T) {
	editor := NewEditor(testWorkflow())
	editor.nowMillis = func() int64 { return 1700000000123 }

	field := editor.AddField("step_2")

	wf := editor.Workflow()
	require.Len(t, wf.Steps[1].Fields, 1)
	got := wf.Steps[1].Fields[0]
	assert.Equal(t, field.Id, got.Id)
	assert.Equal(t, "field_1700000000123", got.Name)
	assert.Equal(t, domain.FieldTypeText, got.Type)
	assert.False(t, got.Required)
	assert.Equal(t, domain.FieldWidthHalf, got.Width)
}

func TestAddFieldUnknownStepIsNoop(t *testing.T) {
	editor := NewEditor(testWorkflow())

	editor.AddField("step_missing")

	wf := editor.Workflow()
	assert.Len(t, wf.Steps[0].Fields, 3)
	assert.Len(t, wf.Steps[1].Fields, 0)
}

func TestUpdateField(t *testing.T) {
	editor := NewEditor(testWorkflow())

	editor.UpdateField("step_1", domain.Field{
		Id:       "field_b",
		Name:     "incoterms",
		Label:    "Incoterms (updated)",
		Type:     domain.FieldTypeSelect,
		Required: true,
		Width:    domain.FieldWidthFull,
		Options:  []string{"CIF", "DDP"},
	})

	wf := editor.Workflow()
	got := wf.Steps[0].Fields[1]
	assert.Equal(t, "Incoterms (updated)", got.Label)
	assert.True(t, got.Required)
	assert.Equal(t, []string{"CIF", "DDP"}, got.Options)
}

func TestRemoveStep(t *testing.T) {
	editor := NewEditor(testWorkflow())

	editor.RemoveStep("step_1")

	wf := editor.Workflow()
	require.Len(t, wf.Steps, 1)
	assert.Equal(t, "step_2", wf.Steps[0].Id)
}

func TestReorderField(t *testing.T) {
	t.Run("moves dragged field to target position", func(t *testing.T) {
		editor := NewEditor(testWorkflow())

		editor.ReorderField("step_1", "field_c", "field_a")

		wf := editor.Workflow()
		ids := fieldIds(wf.Steps[0].Fields)
		assert.Equal(t, []string{"field_c", "field_a", "field_b"}, ids)
	})

	t.Run("moves field toward the end", func(t *testing.T) {
		editor := NewEditor(testWorkflow())

		editor.ReorderField("step_1", "field_a", "field_c")

		wf := editor.Workflow()
		ids := fieldIds(wf.Steps[0].Fields)
		assert.Equal(t, []string{"field_b", "field_c", "field_a"}, ids)
	})

	t.Run("cross-step drop is a no-op", func(t *testing.T) {
		editor := NewEditor(testWorkflow())

		// field_a lives in step_1; dropping it onto a target in step_2
		// never matches both ids in one step.
		editor.ReorderField("step_2", "field_a", "field_c")

		wf := editor.Workflow()
		assert.Equal(t, []string{"field_a", "field_b", "field_c"}, fieldIds(wf.Steps[0].Fields))
	})

	t.Run("unknown ids are a no-op", func(t *testing.T) {
		editor := NewEditor(testWorkflow())

		editor.ReorderField("step_1", "field_a", "field_missing")

		wf := editor.Workflow()
		assert.Equal(t, []string{"field_a", "field_b", "field_c"}, fieldIds(wf.Steps[0].Fields))
	})
}

func TestParseOptions(t *testing.T) {
	assert.Equal(t, []string{"EXW", "FOB", "CIF"}, ParseOptions("EXW, FOB ,CIF"))
	assert.Equal(t, []string{}, ParseOptions(""))
	// No escaping: a literal comma always splits.
	assert.Equal(t, []string{"a", "b"}, ParseOptions("a,b"))
	assert.Equal(t, "EXW,FOB", JoinOptions([]string{"EXW", "FOB"}))
}

func fieldIds(fields []domain.Field) []string {
	ids := make([]string, len(fields))
	for i, f := range fields {
		ids[i] = f.Id
	}
	return ids
}
