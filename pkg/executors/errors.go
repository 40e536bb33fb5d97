package executors

import "errors"

var ErrUnknownExecutor = errors.New("unknown executor")
var ErrInvalidChunkSize = errors.New("invalid chunk size")
var ErrCombine = errors.New("error during combine phase")
