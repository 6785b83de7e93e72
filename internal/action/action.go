package action

// Action is a plain key/value record dispatched to a store.
// The only structurally required field is "type".
type Action map[string]any

// BlockedType is the type of the wrapper emitted in place of a vetoed action.
// The marker keeps it distinct from any application action type.
const BlockedType = "✋BLOCKED_ACTION"

// TypeKey is the field every valid action must define.
const TypeKey = "type"

// New creates an action of the given type.
// Extra fields are passed as alternating key/value pairs; a trailing key
// without a value is ignored.
func New(typ any, kv ...any) Action {
	a := Action{TypeKey: typ}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		a[key] = kv[i+1]
	}
	return a
}

// Type returns the action's type field (nil when undefined).
func (a Action) Type() any {
	return a[TypeKey]
}

// Wrap returns the wrapper action recorded downstream of a vetoed action.
func Wrap(original any) Action {
	return Action{
		TypeKey:   BlockedType,
		"payload": original,
	}
}

// Unwrap returns the original action carried by a wrapper action.
// The boolean is false when v is not a wrapper.
func Unwrap(v any) (any, bool) {
	rec, ok := asRecord(v)
	if !ok || rec[TypeKey] != BlockedType {
		return nil, false
	}
	payload, ok := rec["payload"]
	return payload, ok
}

// IsPlain reports whether v is a plain key/value record.
func IsPlain(v any) bool {
	_, ok := asRecord(v)
	return ok
}

// TypeOf returns the "type" field of v, or nil when v is not a record
// or the field is undefined.
func TypeOf(v any) any {
	rec, ok := asRecord(v)
	if !ok {
		return nil
	}
	return rec[TypeKey]
}

// Field returns a field of a record action.
func Field(v any, key string) (any, bool) {
	rec, ok := asRecord(v)
	if !ok {
		return nil, false
	}
	val, exists := rec[key]
	return val, exists
}

// asRecord returns v as a map when it is a plain record.
// Only Action and map[string]any qualify; structs, slices and functions do not.
func asRecord(v any) (map[string]any, bool) {
	switch rec := v.(type) {
	case Action:
		if rec == nil {
			return nil, false
		}
		return rec, true
	case map[string]any:
		if rec == nil {
			return nil, false
		}
		return rec, true
	default:
		return nil, false
	}
}
