package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kirinyoku/railgo/internal/repository"
)

// Version is the schema version written by this build.
// Version 1 is the bare JSON written before records carried an envelope.
const Version = 2

type envelope[T any] struct {
	Version int `json:"version"`
	Items   []T `json:"items"`
}

type record[T any] struct {
	Version int `json:"version"`
	Item    T   `json:"item"`
}

// decodeList reads a list blob and reports the version it was stored with.
func decodeList[T any](raw []byte) ([]T, int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, Version, nil
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", repository.ErrCorruptRecord, err)
		}
		return items, 1, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", repository.ErrCorruptRecord, err)
	}
	if err := checkVersion(env.Version); err != nil {
		return nil, 0, err
	}

	return env.Items, env.Version, nil
}

func encodeList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(envelope[T]{Version: Version, Items: items})
}

// decodeItem reads a single-record blob; a bare object is version 1.
func decodeItem[T any](raw []byte) (T, bool, error) {
	var zero T

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return zero, false, nil
	}

	var probe struct {
		Version *int            `json:"version"`
		Item    json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return zero, false, fmt.Errorf("%w: %v", repository.ErrCorruptRecord, err)
	}

	body := raw
	if probe.Version != nil {
		if err := checkVersion(*probe.Version); err != nil {
			return zero, false, err
		}
		body = probe.Item
	}

	var item T
	if err := json.Unmarshal(body, &item); err != nil {
		return zero, false, fmt.Errorf("%w: %v", repository.ErrCorruptRecord, err)
	}

	return item, true, nil
}

func encodeItem[T any](item T) ([]byte, error) {
	return json.Marshal(record[T]{Version: Version, Item: item})
}

func checkVersion(v int) error {
	switch {
	case v > Version:
		return fmt.Errorf("%w: %d", repository.ErrUnsupportedVersion, v)
	case v < 1:
		return fmt.Errorf("%w: version %d", repository.ErrCorruptRecord, v)
	}
	return nil
}
