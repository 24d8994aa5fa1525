package glitter

// Binding is a named view over a fixed number of float64 values. Modules
// read and write through bindings so they never depend on where a value
// physically lives.
type Binding interface {
	// Size returns the number of elements in Contents.
	Size() int
	// Contents returns the binding's working buffer. Modules read it after
	// Load and fill it before Store.
	Contents() []float64
}

// ReadBinding can populate its contents from a particle record.
type ReadBinding interface {
	Binding
	Load(particle []float64)
}

// WriteBinding can commit its contents back to a particle record.
type WriteBinding interface {
	Binding
	Store(particle []float64)
}

// ReadWriteBinding supports both directions.
type ReadWriteBinding interface {
	ReadBinding
	WriteBinding
}

// RequireSize returns a *BindingSizeError when b does not hold exactly n
// elements. Module constructors call it for every binding they receive.
func RequireSize(name string, b Binding, n int) error {
	if b == nil {
		return &BindingSizeError{Name: name, Expected: n, Actual: 0}
	}
	if b.Size() != n {
		return &BindingSizeError{Name: name, Expected: n, Actual: b.Size()}
	}
	return nil
}

// requireOptional is RequireSize for bindings that may be omitted.
func requireOptional(name string, b Binding, n int) error {
	if b == nil {
		return nil
	}
	return RequireSize(name, b, n)
}

// --- Constant ---

// ConstantBinding is a read-only binding with fixed contents. Load is a no-op.
type ConstantBinding struct {
	contents []float64
}

var _ ReadBinding = (*ConstantBinding)(nil)

// Constant returns a binding over the given values.
func Constant(values ...float64) *ConstantBinding {
	return &ConstantBinding{contents: values}
}

func (b *ConstantBinding) Size() int           { return len(b.contents) }
func (b *ConstantBinding) Contents() []float64 { return b.contents }
func (b *ConstantBinding) Load([]float64)      {}

// --- Record-backed ---

// StoreBinding is a slice of each particle record, allocated by System.Bind.
// Load copies the slice into a private buffer and Store copies it back, so a
// module can mutate a scratch copy and commit at a point of its choosing.
type StoreBinding struct {
	index    int
	contents []float64
}

var _ ReadWriteBinding = (*StoreBinding)(nil)

func newStoreBinding(index, size int) *StoreBinding {
	return &StoreBinding{index: index, contents: make([]float64, size)}
}

// Index returns the binding's offset into the record.
func (b *StoreBinding) Index() int { return b.index }

func (b *StoreBinding) Size() int           { return len(b.contents) }
func (b *StoreBinding) Contents() []float64 { return b.contents }

func (b *StoreBinding) Load(particle []float64) {
	copy(b.contents, particle[b.index:b.index+len(b.contents)])
}

func (b *StoreBinding) Store(particle []float64) {
	copy(particle[b.index:b.index+len(b.contents)], b.contents)
}

// Get reads element i directly from a record, bypassing the buffer.
func (b *StoreBinding) Get(particle []float64, i int) float64 {
	return particle[b.index+i]
}

// Set writes element i directly into a record, bypassing the buffer.
func (b *StoreBinding) Set(particle []float64, i int, v float64) {
	particle[b.index+i] = v
}

// --- Scratch ---

// VariableBinding is scratch storage not tied to any record, used to pass
// intermediate values between modules within one tick. Load and Store are
// no-ops.
type VariableBinding struct {
	contents []float64
}

var _ ReadWriteBinding = (*VariableBinding)(nil)

// Variable returns a scratch binding of the given size.
func Variable(size int) *VariableBinding {
	return &VariableBinding{contents: make([]float64, size)}
}

func (b *VariableBinding) Size() int           { return len(b.contents) }
func (b *VariableBinding) Contents() []float64 { return b.contents }
func (b *VariableBinding) Load([]float64)      {}
func (b *VariableBinding) Store([]float64)     {}

// --- Computed ---

// FuncBinding computes its contents from the record on every Load.
type FuncBinding struct {
	contents []float64
	fn       func(particle, out []float64)
}

var _ ReadBinding = (*FuncBinding)(nil)

// Computed returns a read-only binding of the given size whose contents are
// produced by fn.
func Computed(size int, fn func(particle, out []float64)) *FuncBinding {
	return &FuncBinding{contents: make([]float64, size), fn: fn}
}

func (b *FuncBinding) Size() int           { return len(b.contents) }
func (b *FuncBinding) Contents() []float64 { return b.contents }

func (b *FuncBinding) Load(particle []float64) {
	b.fn(particle, b.contents)
}
