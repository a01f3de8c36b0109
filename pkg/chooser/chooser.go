package chooser

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is a named preset the tree can be narrowed to. SourceRef optionally
// points at an alternative setup document, relative to the primary one.
type Profile struct {
	ID        string `json:"id"`
	Caption   string `json:"caption"`
	SourceRef string `json:"sourceRef,omitempty"`
}

// UnmarshalJSON accepts "fileName" as an alias for "sourceRef".
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string `json:"id"`
		Caption   string `json:"caption"`
		SourceRef string `json:"sourceRef"`
		FileName  string `json:"fileName"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ID = strings.TrimSpace(raw.ID)
	p.Caption = raw.Caption
	p.SourceRef = strings.TrimSpace(raw.SourceRef)
	if p.SourceRef == "" {
		p.SourceRef = strings.TrimSpace(raw.FileName)
	}
	return nil
}

// Set maps profile ids to profiles. It is populated once and read-only
// afterwards.
type Set map[string]Profile

// ParseSet decodes a chooser document. Both JSON and YAML are accepted, in
// the form {"minimal": {"caption": "Minimal", "fileName": "minimal.json"}}.
// Profiles take their id from the map key when they do not declare one.
func ParseSet(data []byte) (Set, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Set{}, nil
	}

	var raw map[string]Profile
	if err := json.Unmarshal(data, &raw); err != nil {
		var doc map[string]any
		if yamlErr := yaml.Unmarshal(data, &doc); yamlErr != nil {
			return nil, fmt.Errorf("chooser: parse: invalid JSON or YAML: %w", err)
		}
		converted, convErr := json.Marshal(doc)
		if convErr != nil {
			return nil, fmt.Errorf("chooser: convert yaml: %w", convErr)
		}
		if err := json.Unmarshal(converted, &raw); err != nil {
			return nil, fmt.Errorf("chooser: parse: %w", err)
		}
	}

	set := make(Set, len(raw))
	for key, profile := range raw {
		if err := set.Add(key, profile); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Add registers a profile under id, defaulting Profile.ID and Caption.
func (s Set) Add(id string, profile Profile) error {
	id = strings.TrimSpace(id)
	if id == "" {
		id = profile.ID
	}
	if id == "" {
		return errors.New("chooser: profile id is required")
	}
	if existing, exists := s.Lookup(id); exists {
		return fmt.Errorf("chooser: profile %q already registered as %q", id, existing.ID)
	}
	profile.ID = id
	if profile.Caption == "" {
		profile.Caption = id
	}
	s[id] = profile
	return nil
}

// Lookup returns the profile registered under id. Ids compare ignoring case,
// the same way choice names match node choices.
func (s Set) Lookup(id string) (Profile, bool) {
	id = strings.TrimSpace(id)
	if profile, ok := s[id]; ok {
		return profile, true
	}
	for key, profile := range s {
		if strings.EqualFold(key, id) {
			return profile, true
		}
	}
	return Profile{}, false
}

// Sorted returns profiles ordered by id.
func (s Set) Sorted() []Profile {
	out := make([]Profile, 0, len(s))
	for _, profile := range s {
		out = append(out, profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resolve returns the profile for id. An empty id yields nil. Ids missing from
// the set still select by id, with no alternative source.
func (s Set) Resolve(id string) *Profile {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if profile, ok := s.Lookup(id); ok {
		return &profile
	}
	return &Profile{ID: id, Caption: id}
}
