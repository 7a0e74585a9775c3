package screen

import "github.com/unilibs/uniwidth"

// runeWidth returns uniwidth's raw display width for r.
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// isWideRune reports whether r occupies 2 columns.
func isWideRune(r rune) bool {
	return uniwidth.RuneWidth(r) == 2
}

// StringWidth returns the total display width of a string.
func StringWidth(s string) int {
	return uniwidth.StringWidth(s)
}

// wcwidthStd implements the wcwidth_std mapping spec 4.2's draw-text
// algorithm calls for: 0 means skip (zero-width/combining), -1 from the
// underlying width function is folded to 1 (treat as narrow rather than
// drop), 2 means wide. uniwidth never actually returns negative widths,
// but the fold is kept explicit because the spec calls it out as a
// named case other wcwidth implementations do hit.
func wcwidthStd(r rune) int {
	w := runeWidth(r)
	if w < 0 {
		return 1
	}
	return w
}

const (
	runeVS15 rune = 0xFE0E // text presentation selector (downgrades to width 1)
	runeVS16 rune = 0xFE0F // emoji presentation selector (upgrades to width 2)
)

// isVariationSelector reports whether r is one of the two presentation
// selectors spec 3/4.2 single out for special width handling.
func isVariationSelector(r rune) bool {
	return r == runeVS15 || r == runeVS16
}

// isIgnoredControl reports whether r is a format control the draw-text
// loop should silently skip rather than render or combine (spec 4.2
// "is_ignored(ch)"). This covers the common zero-width joiner/non-joiner
// and bidi control ranges; printable combining marks are handled
// separately by isCombining.
func isIgnoredControl(r rune) bool {
	switch {
	case r == 0x200B, r == 0x200C, r == 0x200D, r == 0xFEFF:
		return true
	case r >= 0x202A && r <= 0x202E: // bidi embedding/override controls
		return true
	case r >= 0x2066 && r <= 0x2069: // bidi isolate controls
		return true
	default:
		return false
	}
}

// isCombining reports whether r is a zero-width combining mark that
// should attach to the previous cell rather than occupy its own.
func isCombining(r rune) bool {
	if isVariationSelector(r) {
		return true
	}
	return runeWidth(r) == 0 && r >= 0x0300
}

// isRegionalIndicator reports whether r is one of the 26 regional
// indicator symbols (U+1F1E6-U+1F1FF) used to compose flag emoji pairs.
func isRegionalIndicator(r rune) bool {
	return r >= 0x1F1E6 && r <= 0x1F1FF
}
