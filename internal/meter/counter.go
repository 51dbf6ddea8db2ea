package meter

// Counter is a counting meter advanced explicitly by benchmark code.
//
// Ticks that happen outside a measured operation (for example in a hook) are
// still picked up by the next snapshot pair that spans them, so hooks should
// not tick counters they expect to be measured.
type Counter struct {
	name        string
	unit        string
	description string
	count       uint64
}

// NewCounter creates a counting meter. An empty unit defaults to "ticks".
func NewCounter(name, unit, description string) *Counter {
	if unit == "" {
		unit = "ticks"
	}
	if description == "" {
		description = unit
	}
	return &Counter{name: name, unit: unit, description: description}
}

func (c *Counter) Name() string        { return c.name }
func (c *Counter) Unit() string        { return c.unit }
func (c *Counter) Description() string { return c.description }
func (c *Counter) Kind() Kind          { return KindCount }
func (c *Counter) Value() float64      { return float64(c.count) }

// Tick increments the counter by one.
func (c *Counter) Tick() {
	c.count++
}

// Add increments the counter by n.
func (c *Counter) Add(n uint64) {
	c.count += n
}
