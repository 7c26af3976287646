package resources

import (
	"fmt"
	"path/filepath"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/anima2d/engine/core"
)

type Glyph struct {
	ID       rune
	X        int
	Y        int
	Width    int
	Height   int
	XOffset  int
	YOffset  int
	XAdvance int
	Page     int
}

type kerningPair struct {
	first, second rune
}

/** @brief A bitmap font: metrics, glyph atlas rectangles and page textures. */
type Font struct {
	Path       string
	Face       string
	Size       int
	LineHeight int
	Base       int
	ScaleW     int
	ScaleH     int
	// texture path per page id
	Pages []string

	glyphs      map[rune]Glyph
	kernings    map[kerningPair]int
	pagesLoaded bool
}

func (f *Font) Glyph(r rune) (Glyph, bool) {
	g, ok := f.glyphs[r]
	return g, ok
}

// Kerning is the horizontal adjustment between two consecutive characters.
func (f *Font) Kerning(first, second rune) int {
	return f.kernings[kerningPair{first, second}]
}

func decodeFont(path string) (*Font, error) {
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, err
	}
	desc := font.Descriptor

	out := &Font{
		Path:       path,
		Face:       desc.Info.Face,
		Size:       int(desc.Info.Size),
		LineHeight: int(desc.Common.LineHeight),
		Base:       int(desc.Common.Base),
		ScaleW:     int(desc.Common.ScaleW),
		ScaleH:     int(desc.Common.ScaleH),
		glyphs:     make(map[rune]Glyph, len(desc.Chars)),
		kernings:   make(map[kerningPair]int, len(desc.Kerning)),
	}

	maxPage := -1
	for _, p := range desc.Pages {
		if int(p.ID) > maxPage {
			maxPage = int(p.ID)
		}
	}
	out.Pages = make([]string, maxPage+1)
	dir := filepath.Dir(path)
	for _, p := range desc.Pages {
		out.Pages[p.ID] = filepath.Join(dir, p.File)
	}

	for _, g := range desc.Chars {
		out.glyphs[rune(g.ID)] = Glyph{
			ID:       rune(g.ID),
			X:        int(g.X),
			Y:        int(g.Y),
			Width:    int(g.Width),
			Height:   int(g.Height),
			XOffset:  int(g.XOffset),
			YOffset:  int(g.YOffset),
			XAdvance: int(g.XAdvance),
			Page:     int(g.Page),
		}
	}
	for p, k := range desc.Kerning {
		out.kernings[kerningPair{rune(p.First), rune(p.Second)}] = int(k.Amount)
	}
	return out, nil
}

// FontLoader parses .fnt descriptors and loads their page images through a
// TextureLoader once the descriptor is available.
type FontLoader struct {
	textures *TextureLoader
	loads    *Synchronizer
	m        *Map[*Font]
}

func NewFontLoader(textures *TextureLoader, loads *Synchronizer) *FontLoader {
	l := &FontLoader{
		textures: textures,
		loads:    loads,
		m:        NewMap(decodeFont, loads),
	}
	l.m.OnRelease(func(_ string, f *Font) {
		if !f.pagesLoaded {
			return
		}
		for _, page := range f.Pages {
			if page != "" {
				l.textures.Unload(page)
			}
		}
	})
	return l
}

func (l *FontLoader) Load(path string) *core.Promise {
	p, created := l.m.load(path)
	if created && l.loads != nil {
		l.loads.Defer(func() error {
			if err := p.Err(); err != nil {
				return fmt.Errorf("font %s: %w", path, err)
			}
			font, ok := l.m.Get(path)
			if !ok {
				return nil
			}
			for _, page := range font.Pages {
				if page != "" {
					l.textures.Load(page)
				}
			}
			font.pagesLoaded = true
			return nil
		})
	}
	return p
}

// PageTexture returns the texture of a font page once it is available.
func (l *FontLoader) PageTexture(font *Font, page int) (*Texture, bool) {
	if page < 0 || page >= len(font.Pages) || font.Pages[page] == "" {
		return nil, false
	}
	return l.textures.Get(font.Pages[page])
}

func (l *FontLoader) Get(path string) (*Font, bool) { return l.m.Get(path) }
func (l *FontLoader) Has(path string) bool { return l.m.Has(path) }
func (l *FontLoader) Unload(path string) bool { return l.m.Unload(path) }
