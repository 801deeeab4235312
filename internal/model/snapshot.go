package model

// TickSnapshot is one initialized tick captured from a pool. Liquidity
// values are decimal strings since liquidityNet is a signed 128-bit number.
type TickSnapshot struct {
	Tick           int32  `json:"tick"`
	LiquidityNet   string `json:"liquidity_net"`
	LiquidityGross string `json:"liquidity_gross"`
}

// PoolSnapshot is the state of a V3 pool at a block: static metadata,
// slot0, active liquidity, and the initialized ticks near the current
// price. It is everything the quote engine needs to simulate a swap.
type PoolSnapshot struct {
	ChainID      uint64         `json:"chain_id"`
	Address      string         `json:"address"`
	BlockNumber  uint64         `json:"block_number"`
	Token0       string         `json:"token0"`
	Token1       string         `json:"token1"`
	Fee          uint32         `json:"fee"`
	TickSpacing  int32          `json:"tick_spacing"`
	SqrtPriceX96 string         `json:"sqrt_price_x96"`
	Tick         int32          `json:"tick"`
	Liquidity    string         `json:"liquidity"`
	Ticks        []TickSnapshot `json:"ticks"`
	FetchedAt    string         `json:"fetched_at"`
}
