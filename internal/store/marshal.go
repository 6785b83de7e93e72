package store

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/roach88/mockstore/internal/action"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// marshalPayload converts a recorded value to canonical JSON TEXT for
// storage. Identical values always produce identical text.
func marshalPayload(v any) (string, error) {
	data, err := action.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses stored JSON TEXT. Numbers decode as float64, as
// with encoding/json.
func unmarshalPayload(data string) (any, error) {
	if !jsoniter.ConfigFastest.Valid([]byte(data)) {
		return nil, fmt.Errorf("unmarshal payload: invalid JSON %q", data)
	}
	var v any
	if err := json.UnmarshalFromString(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return v, nil
}

func marshalErrors(errs []string) (string, error) {
	if errs == nil {
		errs = []string{}
	}
	s, err := json.MarshalToString(errs)
	if err != nil {
		return "", fmt.Errorf("marshal errors: %w", err)
	}
	return s, nil
}

func unmarshalErrors(data string) ([]string, error) {
	errs := []string{}
	if data == "" {
		return errs, nil
	}
	if err := json.UnmarshalFromString(data, &errs); err != nil {
		return nil, fmt.Errorf("unmarshal errors: %w", err)
	}
	return errs, nil
}
