// Package collectibleregistry contains the Scorpion implementation of the
// collectible issuance and holder registry.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package collectibleregistry
