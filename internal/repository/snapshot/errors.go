package snapshot

import "errors"

var ErrSnapshotNotFound = errors.New("room snapshot not found")
