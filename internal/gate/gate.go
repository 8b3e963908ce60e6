// Package gate provides a small rule-based authorization checkpoint.
// A Gate maps (resource type, action) pairs to predicates; handlers ask the
// gate before performing any mutating operation. Predicates are pure
// functions of the caller, so the gate holds no state beyond its rule table.
//
// The package uses generics to allow any caller type:
//   - Gate[uint] for simple user ID based auth
//   - Gate[*User] for full user struct based auth
package gate

// Gate is the central authorization checkpoint.
// U is the caller type (must be comparable for the zero-value check).
type Gate[U comparable] struct {
	rules map[string]map[Action]Predicate[U]
}

// NewGate creates an empty Gate ready to register rules.
func NewGate[U comparable]() *Gate[U] {
	return &Gate[U]{rules: make(map[string]map[Action]Predicate[U])}
}

// Allow registers a predicate gating the given actions on a resource type.
// Registering the same (resource, action) pair twice overwrites the rule.
func (g *Gate[U]) Allow(resourceType string, p Predicate[U], actions ...Action) {
	m, ok := g.rules[resourceType]
	if !ok {
		m = make(map[Action]Predicate[U])
		g.rules[resourceType] = m
	}
	for _, a := range actions {
		m[a] = p
	}
}

// Authorize checks authorization and returns an error if denied.
// A zero-value caller (no authenticated user) is always denied, never an
// error condition of its own. An action with no registered rule returns
// ErrNoRuleDefined so missing wiring fails closed and loudly.
func (g *Gate[U]) Authorize(caller U, action Action, resourceType string) error {
	var zero U
	if caller == zero {
		return ErrUnauthorized
	}
	m, ok := g.rules[resourceType]
	if !ok {
		return ErrNoRuleDefined
	}
	p, ok := m[action]
	if !ok {
		return ErrNoRuleDefined
	}
	if !p(caller) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(caller U, action Action, resourceType string) bool {
	return g.Authorize(caller, action, resourceType) == nil
}
