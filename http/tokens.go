package http

import (
	"strings"

	"github.com/indigo-web/utils/strcomp"
)

// containsToken checks a comma-separated header value for a token, case-insensitively.
func containsToken(value, token string) bool {
	for len(value) > 0 {
		var elem string
		comma := strings.IndexByte(value, ',')
		if comma == -1 {
			elem, value = value, ""
		} else {
			elem, value = value[:comma], value[comma+1:]
		}

		if strcomp.EqualFold(strings.TrimSpace(elem), token) {
			return true
		}
	}

	return false
}
