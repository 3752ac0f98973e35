package router

import (
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/domain"
)

// GenerateCandidates enumerates the routes considered for a pair, in a fixed
// order that doubles as the tie-break ranking:
//
//  1. single-hop candidates, fee tiers ascending
//  2. two-hop candidates through each anchor, anchors in configured order,
//     first-hop fee ascending, then second-hop fee ascending
//
// Anchors equal to either endpoint are skipped; a two-hop route through the
// pair itself degenerates into the single-hop set.
func GenerateCandidates(tokenIn, tokenOut ethcommon.Address, anchors []ethcommon.Address) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(common.FeeTiers)*(1+len(anchors)*len(common.FeeTiers)))

	for _, fee := range common.FeeTiers {
		out = append(out, domain.Candidate{Hops: []domain.Hop{
			{TokenIn: tokenIn, TokenOut: tokenOut, Fee: fee},
		}})
	}

	for _, anchor := range anchors {
		if anchor == tokenIn || anchor == tokenOut {
			continue
		}
		for _, feeA := range common.FeeTiers {
			for _, feeB := range common.FeeTiers {
				out = append(out, domain.Candidate{Hops: []domain.Hop{
					{TokenIn: tokenIn, TokenOut: anchor, Fee: feeA},
					{TokenIn: anchor, TokenOut: tokenOut, Fee: feeB},
				}})
			}
		}
	}

	return out
}
