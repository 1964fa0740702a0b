package motion

// Context is the shared variable bag threaded through the whole run: state
// callbacks write it, symbolic speed expressions and breaker extra entries
// read it. The runner is single-threaded, so access is unsynchronized.
type Context struct {
	vars map[string]any
}

// NewContext seeds a context with the given initial variables.
func NewContext(init map[string]any) *Context {
	vars := make(map[string]any, len(init))
	for k, v := range init {
		vars[k] = v
	}
	return &Context{vars: vars}
}

// Get returns the variable's value, or nil when unset.
func (c *Context) Get(name string) any { return c.vars[name] }

// GetInt returns the variable as an int, or 0 when unset or mistyped.
func (c *Context) GetInt(name string) int {
	v, _ := c.vars[name].(int)
	return v
}

// GetBool returns the variable as a bool, or false when unset or mistyped.
func (c *Context) GetBool(name string) bool {
	v, _ := c.vars[name].(bool)
	return v
}

// Set stores a variable.
func (c *Context) Set(name string, v any) { c.vars[name] = v }

// Snapshot returns a copy of the variables for expression evaluation.
func (c *Context) Snapshot() map[string]any {
	out := make(map[string]any, len(c.vars))
	for k, v := range c.vars {
		out[k] = v
	}
	return out
}
