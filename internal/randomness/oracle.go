package randomness

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// RequestParams mirrors the oracle's request surface: key material, block
// confirmations, callback budget, and word count. The vault consumes a single
// word per request.
type RequestParams struct {
	KeyHash          common.Hash
	Confirmations    uint16
	CallbackGasLimit uint32
	Words            uint32
}

// Oracle is the outbound randomness capability. Implementations return a
// request id that is later echoed back on delivery.
type Oracle interface {
	RequestRandomness(ctx context.Context, params RequestParams) (common.Hash, error)
}
