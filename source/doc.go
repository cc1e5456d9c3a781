// Package source provides built-in partition source implementations.
//
// A partition source answers "which partitions exist right now?" for the
// target entity. The Processor queries it every balancing round, so dynamic
// sources pick up partition-count growth without restarts.
//
// Static returns a fixed (but updatable) list; custom sources can query a
// management endpoint or metadata store by satisfying the
// types.PartitionSource interface.
package source
