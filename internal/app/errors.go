package app

import "errors"

// ErrReportWrite indicates the rendered report could not reach its
// destination.
var ErrReportWrite = errors.New("report write failed")
