package glitter

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// EaseBinding is a read-only, single-element binding holding a particle's
// normalized age, optionally eased, offset, and time-scaled.
//
// The result wraps into (0, 1]: a timescale above 1 loops the animation and a
// timescale below 1 ends it early. An offset is applied before the timescale,
// so an offset of 0.5 starts halfway regardless of timescale.
type EaseBinding struct {
	lifetime  ReadBinding
	age       ReadBinding
	timescale ReadBinding
	offset    ReadBinding
	easing    ease.TweenFunc
	contents  [1]float64
}

var _ ReadBinding = (*EaseBinding)(nil)

// EaseOption configures an EaseBinding.
type EaseOption func(*EaseBinding)

// WithTimescale multiplies the normalized age. Must have size 1.
func WithTimescale(b ReadBinding) EaseOption {
	return func(e *EaseBinding) { e.timescale = b }
}

// WithOffset adds to the normalized age before the timescale. Must have size 1.
func WithOffset(b ReadBinding) EaseOption {
	return func(e *EaseBinding) { e.offset = b }
}

// NewEaseBinding returns the eased age/lifetime ratio. lifetime and age are
// usually System.Lifetime and System.Age. A nil easing is linear.
func NewEaseBinding(lifetime, age ReadBinding, easing ease.TweenFunc, opts ...EaseOption) (*EaseBinding, error) {
	e := &EaseBinding{lifetime: lifetime, age: age, easing: easing}
	for _, opt := range opts {
		opt(e)
	}
	if err := RequireSize("lifetime", lifetime, 1); err != nil {
		return nil, err
	}
	if err := RequireSize("age", age, 1); err != nil {
		return nil, err
	}
	if err := requireOptional("timescale", e.timescale, 1); err != nil {
		return nil, err
	}
	if err := requireOptional("offset", e.offset, 1); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *EaseBinding) Size() int           { return 1 }
func (e *EaseBinding) Contents() []float64 { return e.contents[:] }

func (e *EaseBinding) Load(particle []float64) {
	e.age.Load(particle)
	e.lifetime.Load(particle)

	t := 1.0
	if life := e.lifetime.Contents()[0]; life > 0 {
		t = e.age.Contents()[0] / life
	}
	if e.easing != nil {
		t = float64(e.easing(float32(t), 0, 1, 1))
	}
	if e.offset != nil {
		e.offset.Load(particle)
		t += e.offset.Contents()[0]
	}
	if e.timescale != nil {
		e.timescale.Load(particle)
		t *= e.timescale.Contents()[0]
	}
	if t != 0 {
		t = math.Mod(t, 1)
		if t < 0 {
			t++
		}
		// 1 % 1 == 0, but the range is inclusive of 1. A true 0 never gets here.
		if t == 0 {
			t = 1
		}
	}
	e.contents[0] = t
}

// LerpBinding interpolates between two equally sized bindings, driven by a
// single-element progress binding (typically an EaseBinding). The progress
// value is shaped by a gween tween before interpolating.
type LerpBinding struct {
	from     ReadBinding
	to       ReadBinding
	progress ReadBinding
	tween    *gween.Tween
	contents []float64
}

var _ ReadBinding = (*LerpBinding)(nil)

// NewLerpBinding returns from + (to-from)·easing(progress). A nil easing is
// linear.
func NewLerpBinding(from, to, progress ReadBinding, easing ease.TweenFunc) (*LerpBinding, error) {
	if from == nil {
		return nil, &BindingSizeError{Name: "from", Expected: 1}
	}
	if err := RequireSize("to", to, from.Size()); err != nil {
		return nil, err
	}
	if err := RequireSize("progress", progress, 1); err != nil {
		return nil, err
	}
	if easing == nil {
		easing = ease.Linear
	}
	return &LerpBinding{
		from:     from,
		to:       to,
		progress: progress,
		tween:    gween.New(0, 1, 1, easing),
		contents: make([]float64, from.Size()),
	}, nil
}

func (l *LerpBinding) Size() int           { return len(l.contents) }
func (l *LerpBinding) Contents() []float64 { return l.contents }

func (l *LerpBinding) Load(particle []float64) {
	l.from.Load(particle)
	l.to.Load(particle)
	l.progress.Load(particle)

	f, _ := l.tween.Set(float32(l.progress.Contents()[0]))
	from, to := l.from.Contents(), l.to.Contents()
	for i := range l.contents {
		l.contents[i] = lerp(from[i], to[i], float64(f))
	}
}
