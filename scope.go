package fabricate

// Scope is the environment one level's expressions evaluate inside. It holds
// the level's resolved row count, the columns materialized at the level so
// far, and a merged read-only view of every ancestor column cascaded to the
// level's length. Inner bindings shadow outer ones, and N always resolves to
// the current level's size regardless of what ancestors bound it to.
type Scope struct {
	level     string
	n         int
	inherited map[string][]any
	names     []string
	own       map[string][]any
}

func newScope(level string, n int, inherited map[string][]any) *Scope {
	merged := make(map[string][]any, len(inherited))
	for name, values := range inherited {
		merged[name] = values
	}
	return &Scope{
		level:     level,
		n:         n,
		inherited: merged,
		own:       make(map[string][]any),
	}
}

// Level returns the name of the level this scope belongs to.
func (s *Scope) Level() string { return s.level }

// N returns the current level's resolved row count.
func (s *Scope) N() int { return s.n }

// Lookup resolves name against the scope chain, current level first. An
// unbound name returns an UndefinedVariableError carrying the level name.
func (s *Scope) Lookup(name string) ([]any, error) {
	if values, ok := s.own[name]; ok {
		return values, nil
	}
	if values, ok := s.inherited[name]; ok {
		return values, nil
	}
	return nil, &UndefinedVariableError{Level: s.level, Name: name}
}

// bind materializes a new column at the current level. Later expressions in
// the same level see it; it shadows any inherited binding of the same name.
func (s *Scope) bind(name string, values []any) {
	if _, exists := s.own[name]; !exists {
		s.names = append(s.names, name)
	}
	s.own[name] = values
}

// Names returns the names bound at the current level, in declaration order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Bindings flattens the scope into a name-to-column map suitable for an
// expression engine environment. N is bound to the current level's size.
func (s *Scope) Bindings() map[string]any {
	env := make(map[string]any, len(s.inherited)+len(s.own)+1)
	for name, values := range s.inherited {
		env[name] = values
	}
	for name, values := range s.own {
		env[name] = values
	}
	env["N"] = s.n
	return env
}
