package dex

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"swapQuoter/internal/chain"
	"swapQuoter/internal/model"
)

// ReaderConfig tunes how much pool state a snapshot captures and how RPC
// failures are retried.
type ReaderConfig struct {
	// WordRadius is how many tickBitmap words to harvest on each side of
	// the word holding the current tick.
	WordRadius int
	MaxRetries int
	RetryDelay time.Duration
}

// StateReader fetches V3 pool state over RPC and assembles snapshots the
// quote engine can replay offline.
type StateReader struct {
	client *chain.Client
	cfg    ReaderConfig
	logger *zap.Logger
}

func NewStateReader(client *chain.Client, cfg ReaderConfig, logger *zap.Logger) *StateReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WordRadius <= 0 {
		cfg.WordRadius = 2
	}
	return &StateReader{client: client, cfg: cfg, logger: logger}
}

// Snapshot reads pool metadata, slot0, active liquidity and the initialized
// ticks around the current price at the given block. A zero blockNumber
// pins the snapshot to the latest block.
func (r *StateReader) Snapshot(ctx context.Context, pool common.Address, blockNumber uint64) (*model.PoolSnapshot, error) {
	if r.client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}

	if blockNumber == 0 {
		latest, err := r.client.LatestBlockNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("latest block: %w", err)
		}
		blockNumber = latest
	}
	block := new(big.Int).SetUint64(blockNumber)

	chainID, err := r.client.GetChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}

	snap := &model.PoolSnapshot{
		ChainID:     chainID.Uint64(),
		Address:     pool.Hex(),
		BlockNumber: blockNumber,
	}

	if err := r.readMeta(ctx, pool, poolABI, snap); err != nil {
		return nil, err
	}
	if err := r.readSlot0(ctx, pool, poolABI, block, snap); err != nil {
		return nil, err
	}

	values, err := r.call(ctx, pool, poolABI, "liquidity", block)
	if err != nil {
		return nil, err
	}
	liquidity, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	snap.Liquidity = liquidity.String()

	ticks, err := r.readTicks(ctx, pool, poolABI, block, snap.Tick, snap.TickSpacing)
	if err != nil {
		return nil, err
	}
	snap.Ticks = ticks
	snap.FetchedAt = time.Now().UTC().Format(time.RFC3339)

	r.logger.Info("pool snapshot captured",
		zap.String("pool", pool.Hex()),
		zap.Uint64("block", blockNumber),
		zap.Int32("tick", snap.Tick),
		zap.Int("initialized_ticks", len(ticks)),
	)

	return snap, nil
}

func (r *StateReader) readMeta(ctx context.Context, pool common.Address, poolABI abi.ABI, snap *model.PoolSnapshot) error {
	values, err := r.call(ctx, pool, poolABI, "token0", nil)
	if err != nil {
		return err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return fmt.Errorf("token0: %w", err)
	}
	snap.Token0 = token0.Hex()

	values, err = r.call(ctx, pool, poolABI, "token1", nil)
	if err != nil {
		return err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return fmt.Errorf("token1: %w", err)
	}
	snap.Token1 = token1.Hex()

	values, err = r.call(ctx, pool, poolABI, "fee", nil)
	if err != nil {
		return err
	}
	feeInt, err := asBigInt(values[0])
	if err != nil {
		return fmt.Errorf("fee: %w", err)
	}
	snap.Fee = uint32(feeInt.Uint64())

	values, err = r.call(ctx, pool, poolABI, "tickSpacing", nil)
	if err != nil {
		return err
	}
	spacingInt, err := asBigInt(values[0])
	if err != nil {
		return fmt.Errorf("tick spacing: %w", err)
	}
	spacing, err := int24FromBig(spacingInt)
	if err != nil {
		return fmt.Errorf("tick spacing: %w", err)
	}
	snap.TickSpacing = spacing

	return nil
}

func (r *StateReader) readSlot0(ctx context.Context, pool common.Address, poolABI abi.ABI, block *big.Int, snap *model.PoolSnapshot) error {
	values, err := r.call(ctx, pool, poolABI, "slot0", block)
	if err != nil {
		return err
	}
	if len(values) < 2 {
		return fmt.Errorf("slot0 returned %d values", len(values))
	}

	sqrt, err := asBigInt(values[0])
	if err != nil {
		return fmt.Errorf("slot0 sqrt price: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return fmt.Errorf("slot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return fmt.Errorf("slot0 tick: %w", err)
	}

	snap.SqrtPriceX96 = sqrt.String()
	snap.Tick = tick
	return nil
}

// readTicks walks bitmap words around the current tick and loads tick data
// for every set bit.
func (r *StateReader) readTicks(ctx context.Context, pool common.Address, poolABI abi.ABI, block *big.Int, currentTick, spacing int32) ([]model.TickSnapshot, error) {
	low, high, err := wordRange(currentTick, spacing, r.cfg.WordRadius)
	if err != nil {
		return nil, err
	}

	var ticks []model.TickSnapshot
	for word := int32(low); word <= int32(high); word++ {
		values, err := r.call(ctx, pool, poolABI, "tickBitmap", block, int16(word))
		if err != nil {
			return nil, err
		}
		bitsInt, err := asBigInt(values[0])
		if err != nil {
			return nil, fmt.Errorf("tickBitmap word %d: %w", word, err)
		}
		bits, overflow := uint256.FromBig(bitsInt)
		if overflow {
			return nil, fmt.Errorf("tickBitmap word %d exceeds 256 bits", word)
		}

		for _, tick := range ticksInWord(int16(word), bits, spacing) {
			entry, err := r.readTick(ctx, pool, poolABI, block, tick)
			if err != nil {
				return nil, err
			}
			ticks = append(ticks, entry)
		}
	}

	return ticks, nil
}

func (r *StateReader) readTick(ctx context.Context, pool common.Address, poolABI abi.ABI, block *big.Int, tick int32) (model.TickSnapshot, error) {
	values, err := r.call(ctx, pool, poolABI, "ticks", block, big.NewInt(int64(tick)))
	if err != nil {
		return model.TickSnapshot{}, err
	}
	if len(values) < 2 {
		return model.TickSnapshot{}, fmt.Errorf("ticks(%d) returned %d values", tick, len(values))
	}

	gross, err := asBigInt(values[0])
	if err != nil {
		return model.TickSnapshot{}, fmt.Errorf("ticks(%d) liquidity gross: %w", tick, err)
	}
	net, err := asBigInt(values[1])
	if err != nil {
		return model.TickSnapshot{}, fmt.Errorf("ticks(%d) liquidity net: %w", tick, err)
	}

	return model.TickSnapshot{
		Tick:           tick,
		LiquidityNet:   net.String(),
		LiquidityGross: gross.String(),
	}, nil
}

func (r *StateReader) call(ctx context.Context, pool common.Address, poolABI abi.ABI, method string, block *big.Int, args ...interface{}) ([]interface{}, error) {
	data, err := poolABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &pool, Data: data}

	var resp []byte
	err = withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryDelay, func(ctx context.Context) error {
		var callErr error
		resp, callErr = r.client.CallContract(ctx, msg, block)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := poolABI.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
