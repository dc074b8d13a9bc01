package ethereum

import (
	"context"
	"fmt"
)

// Heights uses the chain block number as the registry height.
type Heights struct {
	backend Backend
}

func NewHeights(backend Backend) (*Heights, error) {
	if backend == nil {
		return nil, fmt.Errorf("missing backend")
	}
	return &Heights{backend}, nil
}

func (h *Heights) CurrentHeight(ctx context.Context) (int64, error) {
	number, err := h.backend.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}
	return int64(number), nil
}
