// Package httpapi serves read-only views of the exchange over HTTP.
package httpapi

import (
	"math/big"

	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Exchange is the read side of exchange.Exchange.
type Exchange interface {
	Pools() []simpleswap.Pool
	Pool(tokenA, tokenB common.Address) (simpleswap.Pool, error)
	GetPrice(tokenA, tokenB common.Address) (*big.Int, error)
	QuoteSwap(amountIn *big.Int, tokenIn, tokenOut common.Address) (*big.Int, error)
	TotalLiquidity(tokenA, tokenB common.Address) *big.Int
	BalanceOf(owner, tokenA, tokenB common.Address) *big.Int
}

type Handler struct {
	logger   Logger
	exchange Exchange
}

func NewHandler(logger Logger, ex Exchange) *Handler {
	return &Handler{logger: logger, exchange: ex}
}

// Register mounts the routes on r.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/pools", h.pools)
	r.Get("/pools/:tokenA/:tokenB", h.pool)
	r.Get("/price", h.price)
	r.Get("/quote", h.quote)
	r.Get("/liquidity", h.liquidity)
	r.Get("/balance", h.balance)
}

// NewApp returns a fiber app serving the handler's routes.
func NewApp(logger Logger, ex Exchange) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "simpleswap"})
	NewHandler(logger, ex).Register(app)
	return app
}

// PoolResponse renders amounts as base-10 strings.
type PoolResponse struct {
	ID          uint64         `json:"id"`
	Token0      common.Address `json:"token0"`
	Token1      common.Address `json:"token1"`
	Reserve0    string         `json:"reserve0"`
	Reserve1    string         `json:"reserve1"`
	TotalShares string         `json:"totalShares"`
}

func newPoolResponse(p simpleswap.Pool) PoolResponse {
	return PoolResponse{
		ID:          p.ID,
		Token0:      p.Token0,
		Token1:      p.Token1,
		Reserve0:    p.Reserve0.String(),
		Reserve1:    p.Reserve1.String(),
		TotalShares: p.TotalShares.String(),
	}
}

type PairRequest struct {
	TokenA string `query:"tokenA"`
	TokenB string `query:"tokenB"`
}

type QuoteRequest struct {
	TokenIn  string `query:"tokenIn"`
	TokenOut string `query:"tokenOut"`
	AmountIn string `query:"amountIn"`
}

type BalanceRequest struct {
	Owner  string `query:"owner"`
	TokenA string `query:"tokenA"`
	TokenB string `query:"tokenB"`
}

func (h *Handler) pools(c fiber.Ctx) error {
	pools := h.exchange.Pools()
	res := make([]PoolResponse, 0, len(pools))
	for _, p := range pools {
		res = append(res, newPoolResponse(p))
	}
	return c.JSON(res)
}

func (h *Handler) pool(c fiber.Ctx) error {
	tokenA, err := parseAddress("tokenA", c.Params("tokenA"))
	if err != nil {
		return err
	}
	tokenB, err := parseAddress("tokenB", c.Params("tokenB"))
	if err != nil {
		return err
	}

	pool, err := h.exchange.Pool(tokenA, tokenB)
	if err != nil {
		return h.engineError(err)
	}
	if pool.ID == 0 {
		return ErrPoolNotFound
	}
	return c.JSON(newPoolResponse(pool))
}

func (h *Handler) price(c fiber.Ctx) error {
	tokenA, tokenB, err := h.bindPair(c)
	if err != nil {
		return err
	}
	price, err := h.exchange.GetPrice(tokenA, tokenB)
	if err != nil {
		return h.engineError(err)
	}
	return c.JSON(fiber.Map{"price": price.String()})
}

func (h *Handler) quote(c fiber.Ctx) error {
	var req QuoteRequest
	if err := c.Bind().Query(&req); err != nil {
		h.logger.Debug("failed to bind query parameters", "err", err)
		return ErrInvalidQueryParameters
	}
	tokenIn, err := parseAddress("tokenIn", req.TokenIn)
	if err != nil {
		return err
	}
	tokenOut, err := parseAddress("tokenOut", req.TokenOut)
	if err != nil {
		return err
	}
	amountIn, err := parseAmount(req.AmountIn)
	if err != nil {
		return err
	}

	amountOut, err := h.exchange.QuoteSwap(amountIn, tokenIn, tokenOut)
	if err != nil {
		return h.engineError(err)
	}
	return c.JSON(fiber.Map{"amountOut": amountOut.String()})
}

func (h *Handler) liquidity(c fiber.Ctx) error {
	tokenA, tokenB, err := h.bindPair(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"totalShares": h.exchange.TotalLiquidity(tokenA, tokenB).String()})
}

func (h *Handler) balance(c fiber.Ctx) error {
	var req BalanceRequest
	if err := c.Bind().Query(&req); err != nil {
		h.logger.Debug("failed to bind query parameters", "err", err)
		return ErrInvalidQueryParameters
	}
	owner, err := parseAddress("owner", req.Owner)
	if err != nil {
		return err
	}
	tokenA, err := parseAddress("tokenA", req.TokenA)
	if err != nil {
		return err
	}
	tokenB, err := parseAddress("tokenB", req.TokenB)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"shares": h.exchange.BalanceOf(owner, tokenA, tokenB).String()})
}

func (h *Handler) bindPair(c fiber.Ctx) (common.Address, common.Address, error) {
	var req PairRequest
	if err := c.Bind().Query(&req); err != nil {
		h.logger.Debug("failed to bind query parameters", "err", err)
		return common.Address{}, common.Address{}, ErrInvalidQueryParameters
	}
	tokenA, err := parseAddress("tokenA", req.TokenA)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	tokenB, err := parseAddress("tokenB", req.TokenB)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return tokenA, tokenB, nil
}

func parseAddress(field, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, NewAddressRequired(field)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, NewInvalidAddress(field)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, ErrAmountRequired
	}
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, ErrInvalidAmountFormat
	}
	return amount, nil
}
