package core

// Collection is an ordered, name-keyed view over entities from one source.
//
// Keys iterate in first-insertion order. Names are not guaranteed unique in
// raw data: a later entity with the same name replaces the earlier one but
// keeps its position. Overwritten counts how often that happened so callers
// can surface it.
type Collection struct {
	keys        []string
	entities    map[string]*Entity
	overwritten int
}

// NewCollection keys entities by recipient name.
func NewCollection(entities []*Entity) *Collection {
	c := &Collection{
		keys:     make([]string, 0, len(entities)),
		entities: make(map[string]*Entity, len(entities)),
	}
	for _, e := range entities {
		c.Put(e)
	}
	return c
}

// Put adds or replaces the entity stored under its recipient name.
func (c *Collection) Put(e *Entity) {
	name := e.RecipientName()
	if _, exists := c.entities[name]; exists {
		c.overwritten++
	} else {
		c.keys = append(c.keys, name)
	}
	c.entities[name] = e
}

// Get returns the entity stored under name.
func (c *Collection) Get(name string) (*Entity, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.entities[name]
	return e, ok
}

// Len returns the number of distinct names.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the names in iteration order.
func (c *Collection) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Entities returns the entities in iteration order.
func (c *Collection) Entities() []*Entity {
	if c == nil {
		return nil
	}
	out := make([]*Entity, len(c.keys))
	for i, k := range c.keys {
		out[i] = c.entities[k]
	}
	return out
}

// Overwritten returns how many entities were replaced by a later duplicate name.
func (c *Collection) Overwritten() int {
	if c == nil {
		return 0
	}
	return c.overwritten
}
