package util

// Character classes shared by the jack tokenizer and the vm code parser.
// Everything here works on single bytes: both languages are ASCII only.

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsLetterOrUnderscore(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

// IsSpace reports ascii whitespace.
func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// IsJackSymbol reports whether b is one of the single character jack symbols.
func IsJackSymbol(b byte) bool {
	switch b {
	case '{', '}', '(', ')', '[', ']', '.', ',', ';', '+', '-', '*', '/', '&', '|', '<', '>', '=', '~':
		return true
	}
	return false
}

// IsLabelStart and IsLabelChar describe vm label and function names:
// [A-Za-z_.:][A-Za-z0-9_.$:]*
func IsLabelStart(b byte) bool {
	return IsLetterOrUnderscore(b) || b == '.' || b == ':'
}

func IsLabelChar(b byte) bool {
	return IsLetterOrUnderscoreOrNumber(b) || b == '.' || b == ':' || b == '$'
}
