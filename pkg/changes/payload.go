package changes

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/goliatone/go-configgrid/pkg/values"
)

// Payload serialises the pending changes as
//
//	{"changes": [{"id": "...", "item": "/server/port", "status": "changed",
//	  "value": 49494, "origValue": 49152, "at": "..."}]}
//
// Items use the absolute path form configuration backends expect.
func (r *Recorder) Payload() ([]byte, error) {
	return EncodePayload(r.Changes())
}

// EncodePayload serialises changes into the payload shape used by Payload.
func EncodePayload(changes []Change) ([]byte, error) {
	out := []byte(`{"changes":[]}`)
	for _, change := range changes {
		item, err := encodeChange(change)
		if err != nil {
			return nil, err
		}
		out, err = sjson.SetRawBytes(out, "changes.-1", item)
		if err != nil {
			return nil, fmt.Errorf("changes: append %s: %w", change.Path, err)
		}
	}
	return out, nil
}

func encodeChange(change Change) ([]byte, error) {
	item := []byte(`{}`)
	fields := []struct {
		key   string
		value any
		skip  bool
	}{
		{key: "id", value: change.ID},
		{key: "item", value: "/" + change.Path},
		{key: "status", value: string(change.Status)},
		{key: "value", value: change.Value, skip: change.Value == nil},
		{key: "origValue", value: change.Previous, skip: change.Previous == nil},
		{key: "at", value: change.At.Format(time.RFC3339Nano), skip: change.At.IsZero()},
	}
	var err error
	for _, field := range fields {
		if field.skip {
			continue
		}
		item, err = sjson.SetBytes(item, field.key, field.value)
		if err != nil {
			return nil, fmt.Errorf("changes: encode %s.%s: %w", change.Path, field.key, err)
		}
	}
	return item, nil
}

// ParsePayload reads a payload produced by EncodePayload.
func ParsePayload(data []byte) ([]Change, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("changes: payload is not valid JSON")
	}
	list := gjson.GetBytes(data, "changes")
	if !list.IsArray() {
		return nil, errors.New("changes: payload lacks a changes array")
	}

	var out []Change
	var parseErr error
	list.ForEach(func(_, row gjson.Result) bool {
		change := Change{
			ID:     row.Get("id").String(),
			Path:   row.Get("item").String(),
			Status: values.Status(row.Get("status").String()),
		}
		if v := row.Get("value"); v.Exists() && v.Type != gjson.Null {
			change.Value = v.Value()
		}
		if v := row.Get("origValue"); v.Exists() && v.Type != gjson.Null {
			change.Previous = v.Value()
		}
		if at := row.Get("at").String(); at != "" {
			ts, err := time.Parse(time.RFC3339Nano, at)
			if err != nil {
				parseErr = fmt.Errorf("changes: parse timestamp for %s: %w", change.Path, err)
				return false
			}
			change.At = ts
		}
		if change.Path == "" || change.Status == "" {
			parseErr = errors.New("changes: entry requires item and status")
			return false
		}
		out = append(out, change)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	for i := range out {
		out[i].Path = trimLeadingSlash(out[i].Path)
	}
	return out, nil
}

func trimLeadingSlash(path string) string {
	for len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}
