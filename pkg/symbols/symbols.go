package symbols

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/samber/lo"
)

const (
	// VariantSeparator splits a symbol id into its base name and variant tag.
	VariantSeparator = "_"

	// DefaultAssetPrefix is where the authority serves symbol images.
	DefaultAssetPrefix = "/static/slots_app/images/symbols/"

	// Placeholder is drawn for symbols the registry does not know.
	Placeholder AssetRef = "placeholder"
)

// ErrUnknownSymbol is returned when a symbol's base name is not registered.
var ErrUnknownSymbol = errors.New("unknown symbol")

// AssetRef identifies the visual asset drawn for a symbol.
type AssetRef string

// Registry maps symbol base names to assets.
type Registry struct {
	assets map[string]AssetRef
	names  []string
}

// NewRegistry builds a registry from a base name to asset mapping.
func NewRegistry(assets map[string]AssetRef) *Registry {
	copied := make(map[string]AssetRef, len(assets))
	for name, ref := range assets {
		copied[name] = ref
	}
	names := lo.Keys(copied)
	sort.Strings(names)
	return &Registry{
		assets: copied,
		names:  names,
	}
}

// Default returns the registry for the classic five symbol machine.
func Default() *Registry {
	assets := lo.SliceToMap([]string{"diamond", "floppy", "hourglass", "seven", "telephone"}, func(name string) (string, AssetRef) {
		return name, AssetRef(DefaultAssetPrefix + "0_" + name + ".png")
	})
	return NewRegistry(assets)
}

// BaseName strips the variant tag: "seven_gold" -> "seven".
func BaseName(symbolID string) string {
	base, _, _ := strings.Cut(symbolID, VariantSeparator)
	return base
}

// Variant returns the variant tag of a symbol id, or "" when there is none.
func Variant(symbolID string) string {
	_, variant, _ := strings.Cut(symbolID, VariantSeparator)
	return variant
}

// AssetFor looks up the asset for a symbol id by its base name.
func (r *Registry) AssetFor(symbolID string) (AssetRef, error) {
	ref, ok := r.assets[BaseName(symbolID)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSymbol, symbolID)
	}
	return ref, nil
}

// AssetOrPlaceholder is AssetFor with the placeholder asset on a miss.
func (r *Registry) AssetOrPlaceholder(symbolID string) (AssetRef, error) {
	ref, err := r.AssetFor(symbolID)
	if err != nil {
		return Placeholder, err
	}
	return ref, nil
}

// Names returns the registered base names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Assets returns a copy of the base name to asset mapping.
func (r *Registry) Assets() map[string]AssetRef {
	return lo.Assign(r.assets)
}

// RandomSymbol picks a registered base name uniformly. It is meant for idle
// decoration only, never for rendering an authoritative result.
func (r *Registry) RandomSymbol(rng *rand.Rand) string {
	if len(r.names) == 0 {
		return ""
	}
	return r.names[rng.Intn(len(r.names))]
}
