package checks

import "fmt"

// Registry holds the catalog of checks in registration order. It is
// append-only and built once at startup; a duplicate name within a suite is
// a programming error surfaced by NewRegistry, not at run time.
type Registry struct {
	checks []Check
	seen   map[string]struct{} // "suite/name"
}

// NewRegistry builds a registry from the given checks, failing fast on
// duplicate names within a suite.
func NewRegistry(checks ...Check) (*Registry, error) {
	r := &Registry{seen: make(map[string]struct{}, len(checks))}
	for _, check := range checks {
		if err := r.register(check); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(check Check) error {
	if check.Name == "" {
		return fmt.Errorf("check with empty name in suite %q", check.Suite)
	}
	if check.Run == nil {
		return fmt.Errorf("check %q has no run function", check.Name)
	}
	key := check.Suite + "/" + check.Name
	if _, dup := r.seen[key]; dup {
		return fmt.Errorf("duplicate check %q in suite %q", check.Name, check.Suite)
	}
	r.seen[key] = struct{}{}
	r.checks = append(r.checks, check)
	return nil
}

// Suite returns the checks belonging to the named suite in registration
// order. SuiteAll (or the empty string) returns everything.
func (r *Registry) Suite(name string) []Check {
	if name == SuiteAll || name == "" {
		return append([]Check(nil), r.checks...)
	}
	var out []Check
	for _, check := range r.checks {
		if check.Suite == name {
			out = append(out, check)
		}
	}
	return out
}

// Len returns the total number of registered checks.
func (r *Registry) Len() int {
	return len(r.checks)
}
