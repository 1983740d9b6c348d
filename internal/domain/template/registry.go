package template

import "errors"

// ErrTemplateNotFound indicates no template has the requested id.
var ErrTemplateNotFound = errors.New("template not found")

// Registry is a read-only catalog of activity templates.
type Registry struct {
	ordered []ActivityTemplate
	byID    map[string]int
}

// NewRegistry builds a registry over the given templates. Later duplicates of an id are ignored.
func NewRegistry(templates ...[]ActivityTemplate) *Registry {
	r := &Registry{byID: make(map[string]int)}
	for _, group := range templates {
		for _, t := range group {
			if _, exists := r.byID[t.ID]; exists {
				continue
			}
			r.byID[t.ID] = len(r.ordered)
			r.ordered = append(r.ordered, t)
		}
	}
	return r
}

// Default returns the built-in catalog.
func Default() *Registry {
	return NewRegistry(healthTemplates, growthTemplates, dietTemplates, lifestyleTemplates, expenseTemplates)
}

// Get returns the template with the given id.
func (r *Registry) Get(id string) (ActivityTemplate, bool) {
	i, ok := r.byID[id]
	if !ok {
		return ActivityTemplate{}, false
	}
	return r.ordered[i], true
}

// Lookup is Get with an error for transport callers.
func (r *Registry) Lookup(id string) (ActivityTemplate, error) {
	t, ok := r.Get(id)
	if !ok {
		return ActivityTemplate{}, ErrTemplateNotFound
	}
	return t, nil
}

// All returns every template in catalog order.
func (r *Registry) All() []ActivityTemplate {
	out := make([]ActivityTemplate, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// ByCategory returns the templates of one category in catalog order.
func (r *Registry) ByCategory(c Category) []ActivityTemplate {
	var out []ActivityTemplate
	for _, t := range r.ordered {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

// QuickLog returns the templates offered in the quick-log sheet.
func (r *Registry) QuickLog() []ActivityTemplate {
	var out []ActivityTemplate
	for _, t := range r.ordered {
		if t.IsQuickLogEnabled {
			out = append(out, t)
		}
	}
	return out
}
