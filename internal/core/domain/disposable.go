package domain

// Disposable releases a registration. Implementations must tolerate being
// disposed more than once; a repeated Dispose is a harmless no-op.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a function to the Disposable interface. The wrapped
// function owns its own idempotency.
type DisposableFunc func()

func (f DisposableFunc) Dispose() {
	f()
}

// DisposableCollection releases a group of registrations as one unit.
// Children are released in insertion order; since every child is itself
// idempotent, children may also be disposed individually beforehand, in any
// order.
type DisposableCollection struct {
	children []Disposable
}

func NewDisposableCollection(children ...Disposable) *DisposableCollection {
	return &DisposableCollection{children: children}
}

func (c *DisposableCollection) Push(d Disposable) {
	c.children = append(c.children, d)
}

func (c *DisposableCollection) Dispose() {
	for _, d := range c.children {
		d.Dispose()
	}

	c.children = nil
}
