package ecs

import "reflect"

// Suppressions is a scene-scoped set of globally registered systems that
// must not run while the scene is active. Systems stay registered.
type Suppressions struct {
	names map[string]struct{}
	types map[reflect.Type]struct{}
}

// NewSuppressions creates an empty set.
func NewSuppressions() *Suppressions {
	return &Suppressions{
		names: make(map[string]struct{}),
		types: make(map[reflect.Type]struct{}),
	}
}

// DisableName suppresses the system registered under name.
func (s *Suppressions) DisableName(name string) *Suppressions {
	s.names[name] = struct{}{}
	return s
}

// EnableName lifts a rule added by DisableName.
func (s *Suppressions) EnableName(name string) *Suppressions {
	delete(s.names, name)
	return s
}

// NameDisabled reports whether a DisableName rule exists for name.
func (s *Suppressions) NameDisabled(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.names[name]
	return ok
}

// DisableType suppresses every system whose dynamic type is T.
func DisableType[T System](s *Suppressions) *Suppressions {
	s.types[reflect.TypeFor[T]()] = struct{}{}
	return s
}

// Suppressed reports whether sys is disabled. A nil set suppresses nothing.
func (s *Suppressions) Suppressed(sys System) bool {
	if s == nil {
		return false
	}
	if _, ok := s.names[sys.Name()]; ok {
		return true
	}
	_, ok := s.types[reflect.TypeOf(sys)]
	return ok
}

// Len returns the number of suppression rules.
func (s *Suppressions) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names) + len(s.types)
}
