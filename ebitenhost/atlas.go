package ebitenhost

import (
	"encoding/json"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/glitter"
	"github.com/pkg/errors"
)

// ErrRotatedRegion is returned for atlas regions packed rotated, which
// particle sprites cannot sample.
var ErrRotatedRegion = errors.New("ebitenhost: rotated atlas regions are not supported")

// Region locates a named sprite within an atlas page.
type Region struct {
	Page    int
	Rect    image.Rectangle
	Rotated bool
}

// Atlas maps sprite names to sub-images of one or more page images, as
// exported by TexturePacker.
type Atlas struct {
	// Pages contains the page images indexed by page number.
	Pages   []*ebiten.Image
	regions map[string]Region
}

var _ glitter.SpriteResolver = (*Atlas)(nil)

// LoadAtlas parses TexturePacker JSON data and associates the given page
// images. Both the hash format (a single "frames" object) and the array
// format ("textures" with per-page frames) are accepted.
func LoadAtlas(jsonData []byte, pages []*ebiten.Image) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, errors.Wrap(err, "ebitenhost: parse atlas JSON")
	}

	a := &Atlas{Pages: pages, regions: make(map[string]Region)}
	switch {
	case probe.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &textures); err != nil {
			return nil, errors.Wrap(err, "ebitenhost: parse atlas textures")
		}
		for i, tex := range textures {
			a.addFrames(tex.Frames, i)
		}
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, errors.Wrap(err, "ebitenhost: parse atlas frames")
		}
		a.addFrames(frames, 0)
	default:
		return nil, errors.New(`ebitenhost: atlas JSON has neither "frames" nor "textures"`)
	}
	return a, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame   jsonRect `json:"frame"`
	Rotated bool     `json:"rotated"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func (a *Atlas) addFrames(frames map[string]jsonFrame, page int) {
	for name, f := range frames {
		a.regions[name] = Region{
			Page:    page,
			Rect:    image.Rect(f.Frame.X, f.Frame.Y, f.Frame.X+f.Frame.W, f.Frame.Y+f.Frame.H),
			Rotated: f.Rotated,
		}
	}
}

// Region returns the region for name.
func (a *Atlas) Region(name string) (Region, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Len returns the number of regions.
func (a *Atlas) Len() int { return len(a.regions) }

// Image returns the sub-image for name. It has the signature of
// Sprites.Load, so an atlas can back a Sprites resolver.
func (a *Atlas) Image(name string) (*ebiten.Image, error) {
	r, ok := a.regions[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSprite, "%q", name)
	}
	if r.Rotated {
		return nil, errors.Wrapf(ErrRotatedRegion, "%q", name)
	}
	if r.Page >= len(a.Pages) || a.Pages[r.Page] == nil {
		return nil, errors.Errorf("ebitenhost: sprite %q is on page %d, but only %d pages are loaded", name, r.Page, len(a.Pages))
	}
	return a.Pages[r.Page].SubImage(r.Rect).(*ebiten.Image), nil
}

// ResolveSprite implements glitter.SpriteResolver.
func (a *Atlas) ResolveSprite(name string) (glitter.Sprite, error) {
	img, err := a.Image(name)
	if err != nil {
		return nil, err
	}
	return img, nil
}
