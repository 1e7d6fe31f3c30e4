package domain

import "errors"

// ErrAlreadyExists is returned by repositories when a unique-key insert
// collides with an existing row. It is the only recoverable storage
// failure; everything else is fatal to the in-flight request.
var ErrAlreadyExists = errors.New("already exists")
