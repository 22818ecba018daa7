package services

import "scorpion/contexts/marketplace/market-trading/ports"

// SplitProceeds divides a sale price between the marketing wallet and the
// seller. The royalty share uses floor integer division; the seller takes the
// remainder, so royalty + proceeds always equals the price exactly.
func SplitProceeds(price ports.Amount, royaltyPercent int) (royalty ports.Amount, proceeds ports.Amount) {
	royalty = price * ports.Amount(royaltyPercent) / 100
	proceeds = price - royalty
	return royalty, proceeds
}
