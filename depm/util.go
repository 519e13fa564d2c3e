package depm

// IsValidIdentifier returns whether a string is a valid Abla identifier.  It is
// used to validate names that do not come from source text, such as project
// names.
func IsValidIdentifier(idstr string) bool {
	if idstr == "" {
		return false
	}

	for i, c := range idstr {
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && '0' <= c && c <= '9':
		default:
			return false
		}
	}

	return true
}
