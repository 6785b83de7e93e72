package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleLog() []any {
	return []any{
		Action{"type": "ACTION1"},
		Action{"type": "ACTION2", "payload": "PAYLODED"},
		Action{"type": "ACTION3", "meta": map[string]any{"source": "web", "retry": 1}},
	}
}

func TestHas_TypeStrings(t *testing.T) {
	log := sampleLog()

	assert.True(t, Has([]any{"ACTION1", "ACTION2"}, log))
	assert.True(t, Has([]any{"ACTION1", "ACTION2", "ACTION3"}, log))
	assert.False(t, Has([]any{"whatever", "ACTION1"}, log))
}

func TestHas_Records(t *testing.T) {
	log := sampleLog()

	assert.True(t, Has([]any{Action{"type": "ACTION1"}}, log))
	assert.True(t, Has([]any{Action{"type": "ACTION2", "payload": "PAYLODED"}}, log))
	assert.True(t, Has([]any{
		map[string]any{"type": "ACTION1"},
		Action{"type": "ACTION2", "payload": "PAYLODED"},
	}, log))
	assert.False(t, Has([]any{Action{"type": "ACTION4", "payload": "PAYLODED"}}, log))
	assert.False(t, Has([]any{Action{"type": "ACTION2", "payload": "OTHER"}}, log))
}

func TestHas_OrderIndependent(t *testing.T) {
	log := sampleLog()

	assert.True(t, Has([]any{Action{"type": "ACTION3"}, Action{"type": "ACTION1"}}, log))
	assert.True(t, Has([]any{"ACTION2", "ACTION1"}, log))
}

func TestHas_PartialNestedRecord(t *testing.T) {
	log := sampleLog()

	assert.True(t, Has([]any{Action{"meta": map[string]any{"source": "web"}}}, log))
	assert.False(t, Has([]any{Action{"meta": map[string]any{"source": "cli"}}}, log))
}

func TestHas_PartialRecordWithoutType(t *testing.T) {
	log := sampleLog()
	assert.True(t, Has([]any{Action{"payload": "PAYLODED"}}, log))
}

func TestHas_EmptyCriteriaAndLog(t *testing.T) {
	assert.True(t, Has(nil, sampleLog()))
	assert.True(t, Has(nil, nil))
	assert.False(t, Has([]any{"ACTION1"}, nil))
}

func TestHas_DoesNotMutate(t *testing.T) {
	log := sampleLog()
	before := len(log)
	Has([]any{"ACTION1"}, log)
	Has([]any{"ACTION1"}, log)
	assert.Len(t, log, before)
	assert.Equal(t, sampleLog(), log)
}

func TestMatches_NonRecordEntry(t *testing.T) {
	assert.False(t, Matches("A", "A"))
	assert.False(t, Matches(Action{"type": "A"}, nil))
	assert.True(t, Matches(7, Action{"type": 7}))
}

type kind string

func TestHas_NamedStringTypes(t *testing.T) {
	log := []any{
		Action{"type": kind("ADD_TODO"), "text": kind("milk")},
		New("TOGGLE_TODO"),
	}

	assert.True(t, Has([]any{"ADD_TODO"}, log))
	assert.True(t, Has([]any{kind("TOGGLE_TODO")}, log))
	assert.True(t, Has([]any{Action{"type": "ADD_TODO", "text": "milk"}}, log))
	assert.False(t, Has([]any{kind("DELETE_TODO")}, log))
	assert.False(t, Matches(1, Action{"type": "1"}), "only string kinds compare by value")
}
