package glitter

// SetValueModule copies a source binding into a target every tick, for
// example to latch a computed color or reset a field each frame.
type SetValueModule struct {
	target WriteBinding
	source ReadBinding
}

var _ UpdateModule = (*SetValueModule)(nil)

// NewSetValueModule returns a module writing source into target. Both must
// have the same size.
func NewSetValueModule(target WriteBinding, source ReadBinding) (*SetValueModule, error) {
	if source == nil {
		return nil, &BindingSizeError{Name: "source"}
	}
	if err := RequireSize("target", target, source.Size()); err != nil {
		return nil, err
	}
	return &SetValueModule{target: target, source: source}, nil
}

// Update implements UpdateModule.
func (m *SetValueModule) Update(particle []float64) {
	m.source.Load(particle)
	copy(m.target.Contents(), m.source.Contents())
	m.target.Store(particle)
}
