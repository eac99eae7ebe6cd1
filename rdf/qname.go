package rdf

// Rune classification for PN_CHARS_BASE / PN_CHARS_U / PN_CHARS / PN_LOCAL,
// extending CURIE/prefixed-name validation to the full Unicode ranges the
// Turtle grammar allows for these productions.
var pnCharsTab = []rune{
	'A', 'Z',
	'a', 'z',
	0x00C0, 0x00D6,
	0x00D8, 0x00F6,
	0x00F8, 0x02FF,
	0x0370, 0x037D,
	0x037F, 0x1FFF,
	0x200C, 0x200D,
	0x2070, 0x218F,
	0x2C00, 0x2FEF,
	0x3001, 0xD7FF,
	0xF900, 0xFDCF,
	0xFDF0, 0xFFFD,
	0x10000, 0xEFFFF, // last of PN_CHARS_BASE
	'_', '_',
	':', ':', // last of PN_CHARS_U
	'-', '-',
	'0', '9',
	0x00B7, 0x00B7,
	0x0300, 0x036F,
	0x203F, 0x2040, // last of PN_CHARS
}

const (
	pnCharsBaseRanges = 2 * 14
	pnCharsURanges    = 2 * 16
)

func inRanges(r rune, tab []rune) bool {
	for i := 0; i < len(tab); i += 2 {
		if r >= tab[i] && r <= tab[i+1] {
			return true
		}
	}
	return false
}

func isPnCharsBase(r rune) bool { return inRanges(r, pnCharsTab[:pnCharsBaseRanges]) }
func isPnCharsU(r rune) bool    { return inRanges(r, pnCharsTab[:pnCharsURanges]) }
func isPnChars(r rune) bool     { return inRanges(r, pnCharsTab) }

// isPnLocal reports whether value is a valid PN_LOCAL (the part of a CURIE
// after the ':'), ignoring the '%'-escape and '\'-escape productions which
// the lexer already resolves before this check runs.
func isPnLocal(value string) bool {
	if value == "" {
		return true
	}
	runes := []rune(value)
	first := runes[0]
	if !(isPnCharsU(first) || first == ':' || (first >= '0' && first <= '9')) {
		return false
	}
	for i := 1; i < len(runes); i++ {
		r := runes[i]
		if r == '.' || r == ':' {
			continue
		}
		if !isPnChars(r) {
			return false
		}
	}
	return runes[len(runes)-1] != '.'
}
