package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeysNoHTMLEscape(t *testing.T) {
	data, err := MarshalCanonical(Action{"type": "A<B>", "b": 2, "a": []any{true, nil}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[true,null],"b":2,"type":"A<B>"}`, string(data))
}

func TestMarshalCanonical_TypedValues(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"todos":  []string{"milk", "eggs"},
		"count":  int32(3),
		"ratio":  1.5,
		"whole":  2.0,
		"reason": errors.New("boom"),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"count":3,"ratio":1.5,"reason":"boom","todos":["milk","eggs"],"whole":2}`, string(data))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" followed by a combining acute accent normalizes to U+00E9.
	data, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(data))
}

func TestMarshalCanonical_LineSeparatorsLiteral(t *testing.T) {
	data, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(data))

	data, err = MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(data))
}

func TestMarshalCanonical_RejectsFunctions(t *testing.T) {
	_, err := MarshalCanonical(Action{"type": "A", "fn": func() {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}
