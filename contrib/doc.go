// Package contrib provides additional functionality and utilities
// for the atdock client library.
//
// Everything in this package is intended to extend the core client
// with features that are not part of the core library, such as
// testing utilities and experimental features.
//
// Note that this package is outside of the backward compatibility
// guarantees provided by the core client library. Changes to this
// package may introduce breaking changes without following semantic
// versioning.
//
// The contrib directory currently includes
// [github.com/atdock/atdock.go/contrib/testenv], which provisions
// throwaway file-backed repositories for the runnable examples and
// integration-style tests.
package contrib
