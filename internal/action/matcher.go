package action

import "reflect"

// Has reports whether every criterion matches at least one entry of log.
//
// A string criterion matches an entry whose "type" equals it, including
// types declared as named string types. A record
// criterion matches an entry that contains every field of the criterion
// with an equal value (nested records match partially). Any other criterion
// is compared against the entry's "type".
//
// Matching ignores order; the log is not modified. An empty criteria list
// matches any log.
func Has(criteria []any, log []any) bool {
	for _, criterion := range criteria {
		if !containsMatch(criterion, log) {
			return false
		}
	}
	return true
}

// Matches reports whether a single entry satisfies a criterion.
func Matches(criterion any, entry any) bool {
	if want, ok := asRecord(criterion); ok {
		got, ok := asRecord(entry)
		if !ok {
			return false
		}
		return isMatch(got, want)
	}

	got, ok := asRecord(entry)
	if !ok {
		return false
	}
	typ, exists := got[TypeKey]
	if !exists {
		return false
	}
	return typesEqual(typ, criterion)
}

// typesEqual compares action types and record leaves. Named string types
// (type Kind string) compare by their string value.
func typesEqual(a, b any) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() == reflect.String && bv.Kind() == reflect.String {
		return av.String() == bv.String()
	}
	return reflect.DeepEqual(a, b)
}

func containsMatch(criterion any, log []any) bool {
	for _, entry := range log {
		if Matches(criterion, entry) {
			return true
		}
	}
	return false
}

// isMatch checks that got contains every field of want.
// Extra fields in got are ignored.
func isMatch(got, want map[string]any) bool {
	for key, wantVal := range want {
		gotVal, exists := got[key]
		if !exists {
			return false
		}
		if !valueMatches(gotVal, wantVal) {
			return false
		}
	}
	return true
}

func valueMatches(got, want any) bool {
	if wantRec, ok := asRecord(want); ok {
		gotRec, ok := asRecord(got)
		if !ok {
			return false
		}
		return isMatch(gotRec, wantRec)
	}
	return typesEqual(got, want)
}
