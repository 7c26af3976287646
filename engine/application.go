package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// One of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// Directory watched for hot reload.
	AssetRoot string               `toml:"asset_root"`
	Shaders   renderer.ShaderPaths `toml:"shaders"`
	// Rebuild shader programs when their sources change on disk.
	HotReload bool `toml:"hot_reload"`
	// Wait for the display refresh before presenting a frame.
	VSync bool `toml:"vsync"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  640,
		StartHeight: 480,
		Name:        "Anima2D",
		LogLevel:    "info",
		AssetRoot:   "assets",
		Shaders:     renderer.DefaultShaderPaths(),
		HotReload:   false,
		VSync:       true,
	}
}

// LoadApplicationConfig reads a TOML file over the defaults. Keys missing from
// the file keep their default value.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := DefaultApplicationConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("window size %dx%d: %w", c.StartWidth, c.StartHeight, core.ErrConfiguration)
	}
	for _, p := range []*string{&c.Shaders.SimpleVS, &c.Shaders.SimpleFS, &c.Shaders.TextureVS, &c.Shaders.TextureFS} {
		if *p == "" {
			return fmt.Errorf("empty shader path: %w", core.ErrConfiguration)
		}
		*p = filepath.Clean(*p)
	}
	c.AssetRoot = filepath.Clean(c.AssetRoot)
	return nil
}
