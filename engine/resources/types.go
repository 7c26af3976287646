package resources

import (
	"path/filepath"
	"strings"
)

type ResourceType int

/** @brief Resource types the loaders know about. */
const (
	/** @brief Not something the engine loads. */
	ResourceTypeNone ResourceType = iota
	/** @brief Plain text, e.g. GLSL sources. */
	ResourceTypeText
	/** @brief Image decoded into a texture. */
	ResourceTypeImage
	/** @brief AngelCode bitmap font descriptor. */
	ResourceTypeBitmapFont
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeText:
		return "text"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeBitmapFont:
		return "bitmap font"
	default:
		return "none"
	}
}

// DetermineResourceType classifies a path by its extension.
func DetermineResourceType(path string) ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glsl", ".vert", ".frag", ".txt":
		return ResourceTypeText
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return ResourceTypeImage
	case ".fnt":
		return ResourceTypeBitmapFont
	default:
		return ResourceTypeNone
	}
}
