package model

// QuoteRecord is the storable result of one quote run against a pool
// snapshot. Amounts are decimal strings.
type QuoteRecord struct {
	ChainID         uint64 `json:"chain_id"`
	PoolAddress     string `json:"pool_address"`
	BlockNumber     uint64 `json:"block_number"`
	ZeroForOne      bool   `json:"zero_for_one"`
	ExactOutput     bool   `json:"exact_output"`
	AmountSpecified string `json:"amount_specified"`
	AmountIn        string `json:"amount_in"`
	AmountOut       string `json:"amount_out"`
	FeeAmount       string `json:"fee_amount"`
	SqrtPriceBefore string `json:"sqrt_price_before"`
	SqrtPriceAfter  string `json:"sqrt_price_after"`
	TickBefore      int32  `json:"tick_before"`
	TickAfter       int32  `json:"tick_after"`
	TicksCrossed    int    `json:"ticks_crossed"`
	FullyFilled     bool   `json:"fully_filled"`
	CreatedAt       string `json:"created_at"`
}
