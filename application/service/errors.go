package service

import "errors"

// ErrClientClosed is returned by client operations after Close.
var ErrClientClosed = errors.New("kodit: client is closed")
