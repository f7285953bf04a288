package gateway

import "errors"

var (
	ErrConnClosed       = errors.New("connection closed")
	ErrWriteChannelFull = errors.New("write channel full")
	ErrInvalidProtocol  = errors.New("invalid protocol")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrPanic            = errors.New("panic error")
)
