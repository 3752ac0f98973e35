package router

import (
	"github.com/thehyperflames/swap-gateway/internal/domain"
)

// Swap paths are packed as token(20) | fee(3, big-endian uint24) | token(20)
// per hop, with adjacent hops sharing the boundary token.

const (
	addrLen = 20
	feeLen  = 3
	hopLen  = addrLen + feeLen
)

// EncodePath packs hops in forward order (input token first). Used for
// exact-in quoting and swaps.
func EncodePath(hops []domain.Hop) []byte {
	if len(hops) == 0 {
		return nil
	}
	out := make([]byte, 0, addrLen+len(hops)*hopLen)
	out = append(out, hops[0].TokenIn.Bytes()...)
	for _, h := range hops {
		out = append(out, byte(h.Fee>>16), byte(h.Fee>>8), byte(h.Fee))
		out = append(out, h.TokenOut.Bytes()...)
	}
	return out
}

// EncodePathReversed packs hops output-token-first, the layout the quoter
// and router expect for exact-out.
func EncodePathReversed(hops []domain.Hop) []byte {
	if len(hops) == 0 {
		return nil
	}
	out := make([]byte, 0, addrLen+len(hops)*hopLen)
	out = append(out, hops[len(hops)-1].TokenOut.Bytes()...)
	for i := len(hops) - 1; i >= 0; i-- {
		h := hops[i]
		out = append(out, byte(h.Fee>>16), byte(h.Fee>>8), byte(h.Fee))
		out = append(out, h.TokenIn.Bytes()...)
	}
	return out
}

// PathFor returns the wire path for a candidate under the given swap mode.
func PathFor(c domain.Candidate, mode domain.SwapMode) []byte {
	if mode == domain.ModeExactOut {
		return EncodePathReversed(c.Hops)
	}
	return EncodePath(c.Hops)
}
