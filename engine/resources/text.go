package resources

import (
	"os"

	"github.com/spaghettifunk/anima2d/engine/core"
)

// TextLoader caches plain text files such as GLSL sources.
type TextLoader struct {
	m *Map[string]
}

func NewTextLoader(loads *Synchronizer) *TextLoader {
	return &TextLoader{m: NewMap(decodeText, loads)}
}

func decodeText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (l *TextLoader) Load(path string) *core.Promise { return l.m.Load(path) }
func (l *TextLoader) Reload(path string) *core.Promise { return l.m.Reload(path) }
func (l *TextLoader) Get(path string) (string, bool) { return l.m.Get(path) }
func (l *TextLoader) Has(path string) bool { return l.m.Has(path) }
func (l *TextLoader) Unload(path string) bool { return l.m.Unload(path) }
func (l *TextLoader) Paths() []string { return l.m.Paths() }
