package etlookup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratools/internal/app/domains/entity/etprimitive"
	"stratools/internal/app/pkg/errorx"
)

func TestNewLookupDefaults(t *testing.T) {
	l, err := NewLookup("crm-to-erp", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, l.AllowLeftDups)
	assert.True(t, l.AllowRightDups)
	assert.True(t, l.AllowLeftRightDups)
	assert.False(t, l.StrictChecking)
	assert.False(t, l.Enforces())

	_, err = NewLookup("crm to erp", DefaultOptions())
	assert.True(t, errorx.IsCode(err, errorx.CodeInvalidName))
}

func TestEnforces(t *testing.T) {
	opts := DefaultOptions()
	opts.StrictChecking = true
	l, err := NewLookup("strict", opts)
	require.NoError(t, err)
	assert.False(t, l.Enforces())

	opts.AllowLeftDups = false
	require.NoError(t, l.Apply(opts))
	assert.True(t, l.Enforces())
}

func TestNewValue(t *testing.T) {
	v, err := NewValue("l1", "A", "X", json.RawMessage(`{"k":"v"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, Pair{Left: "A", Right: "X"}, v.Pair())
	assert.Equal(t, "A|X", v.Pair().String())
	assert.Equal(t, v.CreatedAt, v.UpdatedAt)
	assert.Nil(t, v.RightMetadata)

	_, err = NewValue("l1", "A", "", nil, nil)
	require.Error(t, err)
	be := errorx.From(err)
	assert.Equal(t, errorx.CodeValidation, be.Code)
	assert.Equal(t, "right", be.Details[0].Path)
}

func TestBulkAddResult(t *testing.T) {
	v, _ := NewValue("l1", "A", "X", nil, nil)
	res := NewBulkAddResult([]etprimitive.ItemResult[*BulkOutcome]{
		etprimitive.Ok(0, &BulkOutcome{Outcome: OutcomeCreated, Value: v}),
		etprimitive.Ok(1, &BulkOutcome{Outcome: OutcomeUpdated, Value: v}),
		etprimitive.Ok(2, &BulkOutcome{Outcome: OutcomeSkipped, Value: v}),
		etprimitive.Err[*BulkOutcome](3, errorx.Validation("left is required")),
	})
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, res.Errors, 1)
	assert.Len(t, res.Values, 3)
}

func TestBulkModeValid(t *testing.T) {
	assert.True(t, BulkModeUpsert.Valid())
	assert.False(t, BulkMode("merge").Valid())
}

func TestValueMatches(t *testing.T) {
	v, err := NewValue("l1", "A", "X", json.RawMessage(`{"a":1,"b":[1,2]}`), nil)
	require.NoError(t, err)

	assert.True(t, v.Matches("A", "X", json.RawMessage(`{ "b": [1, 2], "a": 1 }`), nil))
	assert.False(t, v.Matches("A", "Y", json.RawMessage(`{"a":1,"b":[1,2]}`), nil))
	assert.False(t, v.Matches("A", "X", nil, nil))
	assert.False(t, v.Matches("A", "X", json.RawMessage(`{"a":1,"b":[1,2]}`), json.RawMessage(`{}`)))
}
