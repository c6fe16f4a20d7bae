// Package service owns the ordered index and is the only entry point
// that mutates it. It serializes access to the red-black tree, turns
// every mutation into a change event for the outbox, and records
// metrics. Transports such as gRPC sit on top of it.
package service
