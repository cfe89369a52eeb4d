package controller

import (
	"errors"

	"sdn-controller/pkg/flow"
	"sdn-controller/pkg/topology"
)

var (
	ErrNodeNotFound    = topology.ErrNodeNotFound
	ErrLinkNotFound    = topology.ErrLinkNotFound
	ErrSelfLoop        = topology.ErrSelfLoop
	ErrInvalidCapacity = topology.ErrInvalidCapacity
	ErrFlowNotFound    = flow.ErrFlowNotFound
	ErrNoPathAvailable = errors.New("no path available")
)
