package orchestrator

import (
	"errors"
	"fmt"
	"strings"
)

func (o *Orchestrator) resolveAdapter(format string, raw []byte) (SchemaAdapter, error) {
	if o.adapters == nil {
		return nil, errors.New("orchestrator: adapter registry is nil")
	}

	if format = strings.TrimSpace(format); format != "" {
		return o.adapters.Get(format)
	}

	matches := o.adapters.Detect(raw)
	switch len(matches) {
	case 0:
		if o.defaultAdapter == "" {
			return nil, errors.New("orchestrator: unable to detect setup format")
		}
		return o.adapters.Get(o.defaultAdapter)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("orchestrator: multiple adapters matched setup (%s), specify format", formatAdapterNames(matches))
	}
}

func formatAdapterNames(adapters []SchemaAdapter) string {
	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		if name := strings.TrimSpace(adapter.Name()); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
