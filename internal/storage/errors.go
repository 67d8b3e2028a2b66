package storage

import "errors"

var ErrNotFound = errors.New("resource not found")
var ErrConflict = errors.New("resource conflict (concurrent modification)")
var ErrDuplicate = errors.New("resource conflict (duplicate key)")
