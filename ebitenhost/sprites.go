package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/glitter"
	"github.com/pkg/errors"
)

// ErrUnknownSprite is returned when a sprite name has no image and no loader
// can produce one.
var ErrUnknownSprite = errors.New("ebitenhost: unknown sprite")

// Sprites is a glitter.SpriteResolver over named *ebiten.Image values.
// Registered images take precedence; other names go to Load, whose results
// are cached until Invalidate.
type Sprites struct {
	// Load, when set, produces images for unregistered names.
	Load func(name string) (*ebiten.Image, error)

	images map[string]*ebiten.Image
	loaded map[string]*ebiten.Image
}

var _ glitter.SpriteResolver = (*Sprites)(nil)

// NewSprites returns an empty resolver.
func NewSprites() *Sprites {
	return &Sprites{
		images: make(map[string]*ebiten.Image),
		loaded: make(map[string]*ebiten.Image),
	}
}

// Register binds name to img, replacing any previous image.
func (s *Sprites) Register(name string, img *ebiten.Image) {
	s.images[name] = img
}

// Invalidate drops every image produced by Load, so the next resolve loads
// it again. Call it before Manager.Reload.
func (s *Sprites) Invalidate() {
	clear(s.loaded)
}

// ResolveSprite implements glitter.SpriteResolver.
func (s *Sprites) ResolveSprite(name string) (glitter.Sprite, error) {
	if img, ok := s.images[name]; ok {
		return img, nil
	}
	if img, ok := s.loaded[name]; ok {
		return img, nil
	}
	if s.Load == nil {
		return nil, errors.Wrapf(ErrUnknownSprite, "%q", name)
	}
	img, err := s.Load(name)
	if err != nil {
		return nil, errors.Wrapf(err, "load sprite %q", name)
	}
	s.loaded[name] = img
	return img, nil
}
