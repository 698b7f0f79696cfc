// Package icon renders feedback symbols in the variant chosen by icons.variant.
package icon

import (
	"slices"

	"github.com/mcmeskajr-prog/trackall/key"
	"github.com/spf13/viper"
)

const (
	plain   = "plain"
	emoji   = "emoji"
	nerd    = "nerd"
	kaomoji = "kaomoji"
	squares = "squares"
)

var variants = []string{plain, emoji, nerd, kaomoji, squares}

// AvailableVariants lists the accepted values of icons.variant.
func AvailableVariants() []string {
	return slices.Clone(variants)
}

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) render(variant string) string {
	switch variant {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return d.plain
	}
}

// Get renders i. An unknown variant falls back to plain text.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.render(viper.GetString(key.IconsVariant))
}
