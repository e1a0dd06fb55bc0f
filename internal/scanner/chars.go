package scanner

// tchars marks the bytes allowed in tokens, i.e. methods and header names.
var tchars = func() (table [256]bool) {
	for c := '0'; c <= '9'; c++ {
		table[c] = true
	}

	for c := 'a'; c <= 'z'; c++ {
		table[c] = true
		table[c-'a'+'A'] = true
	}

	for _, c := range []byte("!#$%&'*+-.^_`|~") {
		table[c] = true
	}

	return table
}()

func isTchar(c byte) bool {
	return tchars[c]
}

// isVchar reports visible ASCII characters.
func isVchar(c byte) bool {
	return c > ' ' && c < 0x7f
}

func isOWS(c byte) bool {
	return c == ' ' || c == '\t'
}
