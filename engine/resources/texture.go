package resources

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

/** @brief A decoded image and, once uploaded, its GPU texture. */
type Texture struct {
	Path   string
	Width  int
	Height int
	// RGBA rows, bottom row first. Released after the upload.
	Pixels []uint8
	Handle renderer.TextureHandle
}

// Upload creates the GPU texture. It must run on the render thread.
func (t *Texture) Upload(gl renderer.Context) error {
	if t.Handle != 0 {
		return nil
	}
	if gl == nil || !gl.IsInitialized() {
		return fmt.Errorf("texture %s: graphics context is not initialized: %w", t.Path, core.ErrFatalInit)
	}
	t.Handle = gl.CreateTexture()
	if t.Handle == 0 {
		return fmt.Errorf("texture %s: allocation failed: %w", t.Path, core.ErrFatalInit)
	}
	gl.UploadTexture(t.Handle, t.Width, t.Height, t.Pixels)
	t.Pixels = nil
	core.LogDebug("texture %s uploaded (%dx%d)", t.Path, t.Width, t.Height)
	return nil
}

// Activate binds the texture to the sampler unit.
func (t *Texture) Activate(gl renderer.Context) error {
	if t.Handle == 0 {
		return fmt.Errorf("texture %s used before it was uploaded: %w", t.Path, core.ErrConfiguration)
	}
	gl.ActiveTexture(renderer.SamplerTextureUnit)
	gl.BindTexture(t.Handle)
	return nil
}

func (t *Texture) delete(gl renderer.Context) {
	if t.Handle != 0 {
		gl.DeleteTexture(t.Handle)
		t.Handle = 0
	}
}

func decodeTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	core.LogDebug("decoded %s image %s", format, path)

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return &Texture{
		Path:   path,
		Width:  w,
		Height: h,
		Pixels: flipRows(rgba.Pix, rgba.Stride, h),
	}, nil
}

// flipRows turns top-down image rows into the bottom-up order GL samples.
func flipRows(pix []uint8, stride, height int) []uint8 {
	out := make([]uint8, len(pix))
	for y := 0; y < height; y++ {
		src := pix[y*stride : (y+1)*stride]
		copy(out[(height-1-y)*stride:], src)
	}
	return out
}

// TextureLoader decodes images in the background and uploads them from the
// synchronizer's continuation.
type TextureLoader struct {
	gl    renderer.Context
	loads *Synchronizer
	m     *Map[*Texture]
}

func NewTextureLoader(gl renderer.Context, loads *Synchronizer) *TextureLoader {
	l := &TextureLoader{
		gl:    gl,
		loads: loads,
		m:     NewMap(decodeTexture, loads),
	}
	l.m.OnRelease(func(_ string, t *Texture) {
		t.delete(l.gl)
	})
	return l
}

func (l *TextureLoader) Load(path string) *core.Promise {
	p, created := l.m.load(path)
	if created && l.loads != nil {
		l.loads.Defer(func() error {
			if err := p.Err(); err != nil {
				return fmt.Errorf("texture %s: %w", path, err)
			}
			tex, ok := l.m.Get(path)
			if !ok {
				// unloaded before the upload
				return nil
			}
			return tex.Upload(l.gl)
		})
	}
	return p
}

// Get returns the texture once decoded. Its Handle is zero until uploaded.
func (l *TextureLoader) Get(path string) (*Texture, bool) { return l.m.Get(path) }
func (l *TextureLoader) Has(path string) bool { return l.m.Has(path) }
func (l *TextureLoader) Unload(path string) bool { return l.m.Unload(path) }
func (l *TextureLoader) Paths() []string { return l.m.Paths() }
