package edl

// Env is a lexical environment: a flat name table plus a pointer to the
// enclosing scope. Lookup walks outward until the root.
type Env struct {
	parent *Env
	table  map[string]Value
}

// NewEnv creates an environment with the given parent (nil for the root).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: make(map[string]Value)}
}

// Define binds name in this scope, shadowing any outer binding of the same
// name. Redefining within the same scope overwrites.
func (e *Env) Define(name string, v Value) {
	e.table[name] = v
}

// Set assigns to the nearest existing binding of name, walking outward.
// It reports false, and creates nothing, when the name is unbound.
func (e *Env) Set(name string, v Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.table[name]; ok {
			env.table[name] = v
			return true
		}
	}
	return false
}

// Get resolves name against this scope chain.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.table[name]; ok {
			return v, true
		}
	}
	return Nil, false
}
