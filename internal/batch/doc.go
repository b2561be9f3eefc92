// Package batch persists processed orders to the destination worksheet in
// fixed-size, paced batches and applies the header and wrap formatting.
package batch
