package server

import (
	"context"

	"github.com/defistate/simpleswap-go/exchange"
	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// AMMService is served under the "amm" namespace.
type AMMService struct {
	logger   Logger
	exchange *exchange.Exchange
	streamer *StateStreamer
}

func (api *AMMService) AddLiquidity(args AddLiquidityArgs) (*AddLiquidityResult, error) {
	res, err := api.exchange.AddLiquidity(args.From, exchange.AddLiquidityParams{
		TokenA:         args.TokenA,
		TokenB:         args.TokenB,
		AmountADesired: toBig(args.AmountADesired),
		AmountBDesired: toBig(args.AmountBDesired),
		AmountAMin:     toBig(args.AmountAMin),
		AmountBMin:     toBig(args.AmountBMin),
		To:             args.To,
		Deadline:       uint64(args.Deadline),
	})
	if err != nil {
		return nil, toRPCError(err)
	}
	return &AddLiquidityResult{
		AmountA: toHex(res.AmountA),
		AmountB: toHex(res.AmountB),
		Shares:  toHex(res.Shares),
	}, nil
}

func (api *AMMService) RemoveLiquidity(args RemoveLiquidityArgs) (*RemoveLiquidityResult, error) {
	res, err := api.exchange.RemoveLiquidity(args.From, exchange.RemoveLiquidityParams{
		TokenA:     args.TokenA,
		TokenB:     args.TokenB,
		Shares:     toBig(args.Shares),
		AmountAMin: toBig(args.AmountAMin),
		AmountBMin: toBig(args.AmountBMin),
		To:         args.To,
		Deadline:   uint64(args.Deadline),
	})
	if err != nil {
		return nil, toRPCError(err)
	}
	return &RemoveLiquidityResult{
		AmountA: toHex(res.AmountA),
		AmountB: toHex(res.AmountB),
	}, nil
}

func (api *AMMService) SwapExactTokensForTokens(args SwapArgs) (*hexutil.Big, error) {
	amountOut, err := api.exchange.SwapExactTokensForTokens(args.From, exchange.SwapParams{
		AmountIn:     toBig(args.AmountIn),
		AmountOutMin: toBig(args.AmountOutMin),
		Path:         args.Path,
		To:           args.To,
		Deadline:     uint64(args.Deadline),
	})
	if err != nil {
		return nil, toRPCError(err)
	}
	return toHex(amountOut), nil
}

func (api *AMMService) GetAmountOut(amountIn, reserveIn, reserveOut *hexutil.Big) (*hexutil.Big, error) {
	out, err := api.exchange.GetAmountOut(toBig(amountIn), toBig(reserveIn), toBig(reserveOut))
	if err != nil {
		return nil, toRPCError(err)
	}
	return toHex(out), nil
}

// QuoteSwap prices a swap against the live reserves without executing it.
func (api *AMMService) QuoteSwap(amountIn *hexutil.Big, tokenIn, tokenOut common.Address) (*hexutil.Big, error) {
	out, err := api.exchange.QuoteSwap(toBig(amountIn), tokenIn, tokenOut)
	if err != nil {
		return nil, toRPCError(err)
	}
	return toHex(out), nil
}

func (api *AMMService) GetPrice(tokenA, tokenB common.Address) (*hexutil.Big, error) {
	price, err := api.exchange.GetPrice(tokenA, tokenB)
	if err != nil {
		return nil, toRPCError(err)
	}
	return toHex(price), nil
}

func (api *AMMService) TotalLiquidity(tokenA, tokenB common.Address) *hexutil.Big {
	return toHex(api.exchange.TotalLiquidity(tokenA, tokenB))
}

func (api *AMMService) BalanceOf(owner, tokenA, tokenB common.Address) *hexutil.Big {
	return toHex(api.exchange.BalanceOf(owner, tokenA, tokenB))
}

func (api *AMMService) GetPool(tokenA, tokenB common.Address) (simpleswap.Pool, error) {
	pool, err := api.exchange.Pool(tokenA, tokenB)
	if err != nil {
		return simpleswap.Pool{}, toRPCError(err)
	}
	return pool, nil
}

func (api *AMMService) GetPools() []simpleswap.Pool {
	return api.exchange.Pools()
}

// SubscribeEvents streams every committed exchange operation.
func (api *AMMService) SubscribeEvents(ctx context.Context) (*rpc.Subscription, error) {
	notifier, supported := rpc.NotifierFromContext(ctx)
	if !supported {
		return nil, rpc.ErrNotificationsUnsupported
	}

	rpcSub := notifier.CreateSubscription()
	events := make(chan exchange.Event, defaultBufferSize)
	sub := api.exchange.SubscribeEvents(events)

	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case ev := <-events:
				if err := notifier.Notify(rpcSub.ID, newEvent(ev)); err != nil {
					api.logger.Debug("event notification failed", "subscription", rpcSub.ID, "error", err)
					return
				}
			case <-rpcSub.Err():
				return
			case err := <-sub.Err():
				if err != nil {
					api.logger.Warn("event subscription dropped", "subscription", rpcSub.ID, "error", err)
				}
				return
			}
		}
	}()
	return rpcSub, nil
}

// SubscribeStateStream sends the current state in full, then a diff after
// every change.
func (api *AMMService) SubscribeStateStream(ctx context.Context) (*rpc.Subscription, error) {
	notifier, supported := rpc.NotifierFromContext(ctx)
	if !supported {
		return nil, rpc.ErrNotificationsUnsupported
	}

	id, events, err := api.streamer.Subscribe()
	if err != nil {
		return nil, err
	}
	rpcSub := notifier.CreateSubscription()

	go func() {
		defer api.streamer.Unsubscribe(id)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := notifier.Notify(rpcSub.ID, ev); err != nil {
					api.logger.Debug("state notification failed", "subscription", rpcSub.ID, "error", err)
					return
				}
			case <-rpcSub.Err():
				return
			}
		}
	}()
	return rpcSub, nil
}
