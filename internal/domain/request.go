package domain

import "time"

// RequestLog is an immutable audit record per inbound quote request. Terminal
// fields (Success, Message, LatencyMs, CacheHit) are set once at completion.
type RequestLog struct {
	ID      string
	ChainID uint64

	TokenIn  string
	TokenOut string
	Amount   string // decimal-string base units, in or out per Mode
	Mode     SwapMode
	FeeTier  uint32 // requested fee tier, 0 = auto

	SlippagePct string

	IP           string
	UserAddress  string
	RateLimitKey string

	Success   bool
	Message   string
	LatencyMs int64
	CacheHit  bool

	CreatedAt time.Time
}
