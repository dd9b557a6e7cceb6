package cache

import "strings"

// Key type prefixes.
const (
	KeyTypeLayout = "layout"
	KeyTypeRender = "render"
)

// LayoutKeyOpts holds every input that changes a layout besides the tree.
type LayoutKeyOpts struct {
	Mode       string  `json:"mode"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	HSpacing   float64 `json:"h_spacing"`
	VSpacing   float64 `json:"v_spacing"`
	TopOffset  float64 `json:"top_offset"`
	MetricsSum string  `json:"metrics"`
}

// RenderKeyOpts holds every input that changes a rendered artifact besides
// the layout.
type RenderKeyOpts struct {
	Format   string  `json:"format"`
	Measured bool    `json:"measured"`
	Fit      bool    `json:"fit"`
	FitZoom  float64 `json:"fit_zoom,omitempty"`
	Theme    string  `json:"theme"`
	Scale    float64 `json:"scale,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout for a tree hash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// RenderKey returns the key of a rendered artifact for a layout key.
	RenderKey(layoutKey string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes key inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, treeHash, opts)
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(layoutKey string, opts RenderKeyOpts) string {
	return hashKey(KeyTypeRender, layoutKey, opts)
}

// KeyType returns the type prefix of a key, ignoring any scope prefix.
func KeyType(key string) string {
	for _, t := range []string{KeyTypeLayout, KeyTypeRender} {
		if strings.Contains(key, t+":") {
			return t
		}
	}
	return "other"
}
