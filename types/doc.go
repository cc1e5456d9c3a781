// Package types defines the core data types and interfaces shared across the
// divvy library.
//
// It exists as a leaf package so that implementation packages (balancer,
// store, source, internal/*) can depend on the shared contracts without
// importing the root divvy package. The root package re-exports everything
// here via type aliases, so users normally write divvy.Ownership,
// divvy.LoadBalancer, etc.
package types
