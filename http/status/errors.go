package status

// HTTPError is an error the connection handler knows how to answer with. It is used
// for failures outside the header parser, i.e. while draining the body or writing.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrCloseConnection = NewError(CloseConnection, "actively closing the connection")
	ErrShutdown        = NewError(CloseConnection, "graceful shutdown")

	ErrBadChunk       = NewError(BadRequest, "malformed chunk-encoded data")
	ErrBadLength      = NewError(BadRequest, "malformed Content-Length value")
	ErrBadEncoding    = NewError(NotImplemented, "unsupported transfer coding")
	ErrBodyTooLarge   = NewError(RequestEntityTooLarge, "request body is too large")
	ErrRequestTimeout = NewError(RequestTimeout, "no forward progress within the read timeout")
)
