// Package clearing implements merit-order double-auction clearing for
// periodic electricity-market sessions. Two engines share one matching
// skeleton and differ only in settlement: PayAsClear assigns one
// clearing price per product, PayAsBid settles every trade at the
// price(s) that produced the match.
//
// A clearing call is a pure batch computation: it consumes an unordered
// orderbook plus the list of valid products, mutates the caller's order
// records in place and returns partitioned references to them. Engines
// hold no state between calls other than their tie-break source.
package clearing
