package cluster

import "errors"

// Sentinel kinds for clustering errors.
var (
	ErrInvalidK    = errors.New("cluster count must be at least 1")
	ErrEmptyData   = errors.New("no data to cluster")
	ErrNoCentroids = errors.New("no centroids fitted")
)
