package equiledger

import (
	"math/big"

	"github.com/equiledger/equiledger/schema"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// mustBig parses a stored balance column. Stored amounts are written by this
// process only, so a parse failure means DB corruption.
func mustBig(s string) *big.Int {
	if s == "" {
		return new(big.Int)
	}
	val, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("corrupt amount column: " + s)
	}
	return val
}

// parseAmount validates a caller-supplied amount: decimal digits, positive.
func parseAmount(s string) (*big.Int, error) {
	val, ok := new(big.Int).SetString(s, 10)
	if !ok || val.Sign() <= 0 {
		return nil, schema.ErrInvalidAmount
	}
	return val, nil
}

// bpsShare returns amount*bps/10000, floor division.
func bpsShare(amount *big.Int, bps int64) *big.Int {
	share := new(big.Int).Mul(amount, big.NewInt(bps))
	return share.Div(share, big.NewInt(schema.BpsDenominator))
}

func checkAddress(addr string) error {
	if !ethcommon.IsHexAddress(addr) {
		return schema.ErrInvalidAddress
	}
	return nil
}

// normAddr canonicalizes an address for use as a primary key.
func normAddr(addr string) string {
	return ethcommon.HexToAddress(addr).Hex()
}
