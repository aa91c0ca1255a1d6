package exchange

import (
	"math/big"
	"sort"
	"sync"
	"testing"

	"github.com/defistate/simpleswap-go/mathutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func drawAmount(t *rapid.T, label string) *big.Int {
	return big.NewInt(rapid.Int64Range(1e9, 1e12).Draw(t, label))
}

// checkConservation asserts that the vault holds exactly the reserves of
// every pool and that each pool's holders own exactly its share supply.
func checkConservation(t require.TestingT, f *fixture) {
	held := map[common.Address]*big.Int{}
	for _, pool := range f.ex.Pools() {
		for token, reserve := range map[common.Address]*big.Int{pool.Token0: pool.Reserve0, pool.Token1: pool.Reserve1} {
			if held[token] == nil {
				held[token] = new(big.Int)
			}
			held[token].Add(held[token], reserve)
		}

		holders, err := f.ex.Holders(pool.Token0, pool.Token1)
		require.NoError(t, err)
		sum := new(big.Int)
		for _, h := range holders {
			sum.Add(sum, f.ex.BalanceOf(h, pool.Token0, pool.Token1))
		}
		require.Zero(t, sum.Cmp(pool.TotalShares), "holders own %s, supply is %s", sum, pool.TotalShares)
		if pool.TotalShares.Sign() == 0 {
			require.Zero(t, pool.Reserve0.Sign())
			require.Zero(t, pool.Reserve1.Sign())
		}
	}
	for token, want := range held {
		got := f.balance(t, token, vault)
		require.Zero(t, want.Cmp(got), "vault holds %s of %s, reserves say %s", got, token, want)
	}
}

func TestProperty_DepositWithdrawRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt, 1_000_000)
		f.add(rt, owner, drawAmount(rt, "seedA"), drawAmount(rt, "seedB"))

		require.NoError(rt, f.assets.Transfer(f.tka, owner, user, big.NewInt(1e13)))
		require.NoError(rt, f.assets.Transfer(f.tkb, owner, user, big.NewInt(1e13)))
		require.NoError(rt, f.assets.Approve(f.tka, user, vault, mathutil.MaxUint256))
		require.NoError(rt, f.assets.Approve(f.tkb, user, vault, mathutil.MaxUint256))

		before, err := f.ex.Pool(f.tka, f.tkb)
		require.NoError(rt, err)
		beforeA, beforeB := before.Reserves(f.tka)

		deposit := f.add(rt, user, drawAmount(rt, "depositA"), drawAmount(rt, "depositB"))
		checkConservation(rt, f)

		res, err := f.ex.RemoveLiquidity(user, RemoveLiquidityParams{
			TokenA:   f.tka,
			TokenB:   f.tkb,
			Shares:   deposit.Shares,
			To:       user,
			Deadline: f.deadline,
		})
		require.NoError(rt, err)

		require.LessOrEqual(rt, res.AmountA.Cmp(deposit.AmountA), 0, "withdrew more A than deposited")
		require.LessOrEqual(rt, res.AmountB.Cmp(deposit.AmountB), 0, "withdrew more B than deposited")

		after, err := f.ex.Pool(f.tka, f.tkb)
		require.NoError(rt, err)
		afterA, afterB := after.Reserves(f.tka)
		require.Zero(rt, after.TotalShares.Cmp(before.TotalShares))
		require.GreaterOrEqual(rt, afterA.Cmp(beforeA), 0)
		require.GreaterOrEqual(rt, afterB.Cmp(beforeB), 0)
		require.Zero(rt, f.ex.BalanceOf(user, f.tka, f.tkb).Sign())
		checkConservation(rt, f)
	})
}

func TestProperty_SwapsNeverDecreaseProduct(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt, 1_000_000)
		f.add(rt, owner, drawAmount(rt, "seedA"), drawAmount(rt, "seedB"))

		product := func() *big.Int {
			pool, err := f.ex.Pool(f.tka, f.tkb)
			require.NoError(rt, err)
			return new(big.Int).Mul(pool.Reserve0, pool.Reserve1)
		}

		prev := product()
		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			path := []common.Address{f.tka, f.tkb}
			if rapid.Bool().Draw(rt, "reverse") {
				path[0], path[1] = path[1], path[0]
			}
			_, err := f.ex.SwapExactTokensForTokens(owner, SwapParams{
				AmountIn: drawAmount(rt, "amountIn"),
				Path:     path,
				To:       owner,
				Deadline: f.deadline,
			})
			require.NoError(rt, err)

			next := product()
			require.GreaterOrEqual(rt, next.Cmp(prev), 0, "product fell from %s to %s", prev, next)
			prev = next
		}
		checkConservation(rt, f)
	})
}

func TestProperty_MixedOperationsConserveAssets(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt, 1_000_000)
		accounts := []common.Address{owner, user}
		require.NoError(rt, f.assets.Transfer(f.tka, owner, user, big.NewInt(1e15)))
		require.NoError(rt, f.assets.Transfer(f.tkb, owner, user, big.NewInt(1e15)))
		require.NoError(rt, f.assets.Approve(f.tka, user, vault, mathutil.MaxUint256))
		require.NoError(rt, f.assets.Approve(f.tkb, user, vault, mathutil.MaxUint256))

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			who := rapid.SampledFrom(accounts).Draw(rt, "account")
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				_, _ = f.ex.AddLiquidity(who, AddLiquidityParams{
					TokenA:         f.tka,
					TokenB:         f.tkb,
					AmountADesired: drawAmount(rt, "amountA"),
					AmountBDesired: drawAmount(rt, "amountB"),
					To:             who,
					Deadline:       f.deadline,
				})
			case 1:
				balance := f.ex.BalanceOf(who, f.tka, f.tkb)
				if balance.Sign() == 0 {
					continue
				}
				pct := rapid.Int64Range(1, 100).Draw(rt, "percent")
				shares := new(big.Int).Div(new(big.Int).Mul(balance, big.NewInt(pct)), big.NewInt(100))
				_, _ = f.ex.RemoveLiquidity(who, RemoveLiquidityParams{
					TokenA:   f.tka,
					TokenB:   f.tkb,
					Shares:   shares,
					To:       who,
					Deadline: f.deadline,
				})
			case 2:
				_, _ = f.ex.SwapExactTokensForTokens(who, SwapParams{
					AmountIn: drawAmount(rt, "amountIn"),
					Path:     []common.Address{f.tkb, f.tka},
					To:       who,
					Deadline: f.deadline,
				})
			}
			checkConservation(rt, f)
		}
	})
}

func TestConcurrentOperations(t *testing.T) {
	f := newFixture(t, 1_000_000)
	seed := big.NewInt(1e15)
	f.add(t, owner, seed, seed)
	_, err := f.ex.AddLiquidity(owner, AddLiquidityParams{
		TokenA:         f.tka,
		TokenB:         f.tkc,
		AmountADesired: seed,
		AmountBDesired: seed,
		To:             owner,
		Deadline:       f.deadline,
	})
	require.NoError(t, err)

	const (
		workers = 8
		rounds  = 25
	)

	events := make(chan Event, workers*rounds*2)
	sub := f.ex.SubscribeEvents(events)
	defer sub.Unsubscribe()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			other := f.tkb
			if w%2 == 1 {
				other = f.tkc
			}
			for i := 0; i < rounds; i++ {
				path := []common.Address{f.tka, other}
				if i%2 == 1 {
					path[0], path[1] = path[1], path[0]
				}
				_, err := f.ex.SwapExactTokensForTokens(owner, SwapParams{
					AmountIn: big.NewInt(1e9),
					Path:     path,
					To:       owner,
					Deadline: f.deadline,
				})
				assert.NoError(t, err)

				_, err = f.ex.AddLiquidity(owner, AddLiquidityParams{
					TokenA:         f.tka,
					TokenB:         other,
					AmountADesired: big.NewInt(1e9),
					AmountBDesired: big.NewInt(1e9),
					To:             owner,
					Deadline:       f.deadline,
				})
				assert.NoError(t, err)
			}
		}(w)
	}

	var readers sync.WaitGroup
	readers.Add(1)
	go func() {
		defer readers.Done()
		for i := 0; i < 50; i++ {
			snap := f.ex.Snapshot()
			for _, pool := range snap.Pools {
				assert.Positive(t, pool.TotalShares.Sign())
			}
			_, _ = f.ex.GetPrice(f.tka, f.tkb)
		}
	}()

	wg.Wait()
	readers.Wait()

	total := workers * rounds * 2
	require.Equal(t, uint64(total+2), f.ex.Checkpoint())
	checkConservation(t, f)

	checkpoints := make([]uint64, 0, total)
	for i := 0; i < total; i++ {
		checkpoints = append(checkpoints, (<-events).Checkpoint)
	}
	sort.Slice(checkpoints, func(i, j int) bool { return checkpoints[i] < checkpoints[j] })
	for i, cp := range checkpoints {
		assert.Equal(t, uint64(i+3), cp)
	}
}
