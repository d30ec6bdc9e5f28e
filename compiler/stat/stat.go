// Package stat is a named counter registry.
//
// Counters are identified by name: the first Counter call with a name
// creates it with the given value and description, later calls return
// the same underlying counter. A Registry is safe for concurrent use.
package stat

import (
	"sort"
	"sync"

	"tlog.app/go/tlog/tlwire"
)

type (
	Registry struct {
		mu sync.Mutex
		m  map[string]*counter
	}

	counter struct {
		name string
		desc string
		val  int
	}

	// Counter is a handle to a registered counter.
	// The zero Counter is invalid: mutations are ignored and Value is 0.
	Counter struct {
		r *Registry
		c *counter
	}

	Record struct {
		Name  string `yaml:"name"`
		Type  int    `yaml:"type"`
		Desc  string `yaml:"description"`
		Value int    `yaml:"value"`
	}
)

const (
	DefaultValue = 0
	DefaultDesc  = "none"

	// CounterType tags counter records among other statistics groups.
	CounterType = 0x636e74
)

func New() *Registry {
	return &Registry{m: make(map[string]*counter)}
}

// Counter gets or creates the counter called name.
// val and desc are only used when the counter is created.
func (r *Registry) Counter(name string, val int, desc string) Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.m == nil {
		r.m = make(map[string]*counter)
	}

	c, ok := r.m[name]
	if !ok {
		c = &counter{name: name, desc: desc, val: val}
		r.m[name] = c
	}

	return Counter{r: r, c: c}
}

// Lookup returns the counter called name or an invalid handle.
func (r *Registry) Lookup(name string) Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.m[name]
	if !ok {
		return Counter{}
	}

	return Counter{r: r, c: c}
}

func (r *Registry) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs := make([]Record, 0, len(r.m))

	for _, c := range r.m {
		rs = append(rs, Record{
			Name:  c.name,
			Type:  CounterType,
			Desc:  c.desc,
			Value: c.val,
		})
	}

	sort.Slice(rs, func(i, j int) bool {
		return rs[i].Name < rs[j].Name
	})

	return rs
}

func (r *Registry) MarshalYAML() (interface{}, error) {
	return r.Records(), nil
}

func (c Counter) Valid() bool { return c.c != nil }

func (c Counter) Name() string {
	if c.c == nil {
		return ""
	}

	return c.c.name
}

func (c Counter) Desc() string {
	if c.c == nil {
		return ""
	}

	c.r.mu.Lock()
	defer c.r.mu.Unlock()

	return c.c.desc
}

func (c Counter) SetDesc(desc string) Counter {
	c.update(func(x *counter) { x.desc = desc })

	return c
}

func (c Counter) Value() int {
	if c.c == nil {
		return 0
	}

	c.r.mu.Lock()
	defer c.r.mu.Unlock()

	return c.c.val
}

func (c Counter) Inc() Counter { return c.Add(1) }
func (c Counter) Dec() Counter { return c.Sub(1) }

func (c Counter) Add(n int) Counter {
	c.update(func(x *counter) { x.val += n })

	return c
}

func (c Counter) Sub(n int) Counter {
	c.update(func(x *counter) { x.val -= n })

	return c
}

func (c Counter) Assign(n int) Counter {
	c.update(func(x *counter) { x.val = n })

	return c
}

func (c Counter) update(f func(x *counter)) {
	if c.c == nil {
		return
	}

	c.r.mu.Lock()
	defer c.r.mu.Unlock()

	f(c.c)
}

func (c Counter) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if c.c == nil {
		return e.AppendMap(b, 0)
	}

	b = e.AppendMap(b, 1)
	b = e.AppendKeyInt(b, c.c.name, c.Value())

	return b
}
