package gate

// Predicate decides whether a caller may proceed. Implementations must be
// pure: no side effects, deterministic for a given caller.
type Predicate[U any] func(caller U) bool

// Any returns a predicate that allows when at least one of the given
// predicates allows.
func Any[U any](preds ...Predicate[U]) Predicate[U] {
	return func(caller U) bool {
		for _, p := range preds {
			if p(caller) {
				return true
			}
		}
		return false
	}
}

// All returns a predicate that allows only when every given predicate allows.
func All[U any](preds ...Predicate[U]) Predicate[U] {
	return func(caller U) bool {
		for _, p := range preds {
			if !p(caller) {
				return false
			}
		}
		return true
	}
}
