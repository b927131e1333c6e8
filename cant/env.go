package cant

// environment is a lexical scope chained to its parent.
type environment struct {
	parent *environment
	vars   map[string]Value
}

func newEnv(parent *environment) *environment {
	return &environment{parent: parent, vars: make(map[string]Value)}
}

// Get resolves a name, walking parent scopes outward.
func (e *environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Define creates or replaces a binding in this scope only.
func (e *environment) Define(name string, value Value) {
	e.vars[name] = value
}

// Assign updates the nearest scope that already binds name, defining
// locally when none does.
func (e *environment) Assign(name string, value Value) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = value
			return
		}
	}
	e.vars[name] = value
}
