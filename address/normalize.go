package address

import (
	"strings"

	"github.com/relloyd/addrsync/constants"
	"github.com/relloyd/addrsync/helper"
)

// Denylist holds the glyphs removed from every extracted value.
var Denylist = []string{"‰", "–", "Š", "ƒ", "‡", "”", "“", "º", "ª", "’"}

var denylistReplacer = newDenylistReplacer()

func newDenylistReplacer() *strings.Replacer {
	pairs := make([]string, 0, len(Denylist)*2)
	for _, g := range Denylist {
		pairs = append(pairs, g, "")
	}
	return strings.NewReplacer(pairs...)
}

// Normalize converts a value scanned from the source into text.
// NULL becomes "". Denylisted glyphs are deleted and then surrounding whitespace is trimmed.
func Normalize(v interface{}) (string, error) {
	s, err := helper.GetStringFromInterface(v, constants.TimeFormatSourceValue)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(denylistReplacer.Replace(s)), nil
}
