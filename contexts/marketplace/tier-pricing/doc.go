// Package tierpricing contains the Scorpion implementation of the
// scarcity tier price table.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package tierpricing
