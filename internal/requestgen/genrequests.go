// Package requestgen makes raw message heads for tests and benchmarks.
package requestgen

import (
	"strconv"
	"strings"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/httphead/http/headers"
)

// Headers makes n headers with 100-byte values, the last one being Host.
func Headers(n int) *headers.Headers {
	hdrs := headers.NewPrealloc(n)

	for i := 0; i < n-1; i++ {
		hdrs.Add("some-random-header-name-nobody-cares-about"+strconv.Itoa(i), strings.Repeat("b", 100))
	}

	return hdrs.Add("Host", "localhost")
}

// RandomHeaders makes n headers with random names of the given length.
func RandomHeaders(n, nameLen int) *headers.Headers {
	hdrs := headers.NewPrealloc(n)

	for i := 0; i < n; i++ {
		hdrs.Add(uniuri.NewLen(nameLen), strconv.Itoa(i))
	}

	return hdrs
}

func HeadersBlock(hdrs *headers.Headers) (buff []byte) {
	for _, pair := range hdrs.Unwrap() {
		buff = append(buff, pair.Key+": "+pair.Value+"\r\n"...)
	}

	return buff
}

// Generate makes a GET request to /target.
func Generate(target string, hdrs *headers.Headers) (request []byte) {
	request = append(request, "GET /"+target+" HTTP/1.1\r\n"...)
	request = append(request, HeadersBlock(hdrs)...)

	return append(request, '\r', '\n')
}
