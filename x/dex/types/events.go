package types

// Event types for the DEX module
const (
	EventTypePositionOpen      = "position_open"
	EventTypePositionClose     = "position_close"
	EventTypePositionWithdraw  = "position_withdraw"
	EventTypePositionExecution = "position_execution"
	EventTypePositionEvicted   = "position_evicted"
	EventTypeBatchSwap         = "batch_swap"
	EventTypeArbitrage         = "arbitrage_execution"
	EventTypeVCBCredit         = "vcb_credit"
	EventTypeVCBDebit          = "vcb_debit"
	EventTypeDexEndBlock       = "dex_end_block"
)

// Event attribute keys
const (
	AttributeKeyPositionID  = "position_id"
	AttributeKeyTradingPair = "trading_pair"
	AttributeKeyDirection   = "direction"
	AttributeKeyFee         = "fee"
	AttributeKeyP           = "p"
	AttributeKeyQ           = "q"
	AttributeKeyReserves1   = "reserves_1"
	AttributeKeyReserves2   = "reserves_2"
	AttributeKeyPrevR1      = "prev_reserves_1"
	AttributeKeyPrevR2      = "prev_reserves_2"
	AttributeKeySequence    = "sequence"
	AttributeKeyReason      = "reason"
	AttributeKeyDelta1      = "delta_1"
	AttributeKeyDelta2      = "delta_2"
	AttributeKeyLambda1     = "lambda_1"
	AttributeKeyLambda2     = "lambda_2"
	AttributeKeyUnfilled1   = "unfilled_1"
	AttributeKeyUnfilled2   = "unfilled_2"
	AttributeKeyHeight      = "height"
	AttributeKeyAssetID     = "asset_id"
	AttributeKeyAmount      = "amount"
	AttributeKeyBalance     = "balance"
	AttributeKeyInput       = "input"
	AttributeKeyOutput      = "output"
	AttributeKeyProfit      = "profit"
	AttributeKeyContext     = "context"
	AttributeKeyBatches     = "batches"
)

// Close reasons
const (
	CloseReasonExplicit = "explicit"
	CloseReasonQueued   = "queued"
	CloseReasonEvicted  = "evicted"
	CloseReasonFilled   = "limit_order_filled"
	CloseReasonOverflow = "execution_overflow"
)
