// Package markettrading contains the Scorpion implementation of the
// market-item ledger and purchase-settlement engine.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition. The settlement engine holds
// no state of its own: it orchestrates the ledger, the wallet ledger, the
// collectible registry, and the tier price table.
package markettrading
