// Package catalog holds the compiled-in table of models the relay can select.
package catalog

import "strings"

// ModelDescriptor maps a short model key to an upstream model identifier.
type ModelDescriptor struct {
	Key          string   `json:"id" yaml:"key"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	UpstreamID   string   `json:"api_model" yaml:"upstream_id"`
	Aliases      []string `json:"aliases,omitempty" yaml:"aliases"`
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
}

// DisplayName combines the name and description for UI labels.
func (m ModelDescriptor) DisplayName() string {
	if m.Description == "" {
		return m.Name
	}
	return m.Name + " (" + m.Description + ")"
}

// DefaultKey is the model used when a request names no model or an unknown one.
const DefaultKey = "fom"

var builtin = []ModelDescriptor{
	{
		Key:          "fom",
		Name:         "FOM 1.0",
		Description:  "Fast Output Model",
		UpstreamID:   "deepseek-chat",
		Aliases:      []string{"fast"},
		Capabilities: []string{"chat", "drafting", "summarization"},
	},
	{
		Key:          "rvm",
		Name:         "RVM 1.0",
		Description:  "Research Verifying Model",
		UpstreamID:   "deepseek-reasoner",
		Aliases:      []string{"verify"},
		Capabilities: []string{"chat", "reasoning", "verification"},
	},
}

// Catalog is an immutable model table with a designated default entry.
// It is safe for concurrent use.
type Catalog struct {
	models []ModelDescriptor
	index  map[string]int
	def    int
}

// Builtin returns the compiled-in catalog.
func Builtin() *Catalog {
	c, err := New(builtin, DefaultKey)
	if err != nil {
		panic(err)
	}
	return c
}

// New builds a catalog from models. defaultKey must name one of them.
// Keys and aliases are matched case-insensitively and must be unique.
func New(models []ModelDescriptor, defaultKey string) (*Catalog, error) {
	if len(models) == 0 {
		return nil, ErrEmpty
	}
	c := &Catalog{
		models: make([]ModelDescriptor, len(models)),
		index:  make(map[string]int, len(models)*2),
		def:    -1,
	}
	for i, m := range models {
		m.Aliases = append([]string(nil), m.Aliases...)
		m.Capabilities = append([]string(nil), m.Capabilities...)
		c.models[i] = m
		for _, k := range append([]string{m.Key}, m.Aliases...) {
			nk := normalize(k)
			if nk == "" {
				return nil, &KeyError{Key: k, Reason: "empty"}
			}
			if _, dup := c.index[nk]; dup {
				return nil, &KeyError{Key: k, Reason: "duplicate"}
			}
			c.index[nk] = i
		}
		if normalize(m.Key) == normalize(defaultKey) {
			c.def = i
		}
	}
	if c.def < 0 {
		return nil, &KeyError{Key: defaultKey, Reason: "default not in table"}
	}
	return c, nil
}

func normalize(k string) string { return strings.ToLower(strings.TrimSpace(k)) }

// Resolve returns the descriptor for key. An empty or unrecognized key resolves
// to the default entry and ok reports false.
func (c *Catalog) Resolve(key string) (m ModelDescriptor, ok bool) {
	if i, found := c.index[normalize(key)]; found {
		return c.clone(i), true
	}
	return c.clone(c.def), false
}

// Default returns the default descriptor.
func (c *Catalog) Default() ModelDescriptor { return c.clone(c.def) }

// List returns the table in declaration order.
func (c *Catalog) List() []ModelDescriptor {
	out := make([]ModelDescriptor, len(c.models))
	for i := range c.models {
		out[i] = c.clone(i)
	}
	return out
}

func (c *Catalog) clone(i int) ModelDescriptor {
	m := c.models[i]
	m.Aliases = append([]string(nil), m.Aliases...)
	m.Capabilities = append([]string(nil), m.Capabilities...)
	return m
}
