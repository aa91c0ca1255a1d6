package exchange

import (
	"errors"
	"math/big"
	"time"

	"github.com/defistate/simpleswap-go/assets"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Clock is the time source for deadline checks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// AssetLedger moves the pooled assets. Transact must apply every transfer
// made by fn, or none of them if fn returns an error.
type AssetLedger interface {
	Transact(spender common.Address, fn func(tx assets.Tx) error) error
}

type Config struct {
	Logger   Logger
	Registry prometheus.Registerer
	Assets   AssetLedger
	// Clock defaults to SystemClock.
	Clock Clock
	// Vault is the account that holds every pool's reserves. Depositors
	// approve it as spender.
	Vault common.Address
}

func (c *Config) validate() error {
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Assets == nil {
		return errors.New("config: Assets cannot be nil")
	}
	if c.Vault == (common.Address{}) {
		return errors.New("config: Vault cannot be the zero address")
	}
	return nil
}

type AddLiquidityParams struct {
	TokenA         common.Address
	TokenB         common.Address
	AmountADesired *big.Int
	AmountBDesired *big.Int
	AmountAMin     *big.Int
	AmountBMin     *big.Int
	To             common.Address
	Deadline       uint64 // unix seconds
}

type AddLiquidityResult struct {
	AmountA *big.Int
	AmountB *big.Int
	Shares  *big.Int
}

type RemoveLiquidityParams struct {
	TokenA     common.Address
	TokenB     common.Address
	Shares     *big.Int
	AmountAMin *big.Int
	AmountBMin *big.Int
	To         common.Address
	Deadline   uint64
}

type RemoveLiquidityResult struct {
	AmountA *big.Int
	AmountB *big.Int
}

type SwapParams struct {
	AmountIn     *big.Int
	AmountOutMin *big.Int
	// Path is [tokenIn, tokenOut].
	Path     []common.Address
	To       common.Address
	Deadline uint64
}
