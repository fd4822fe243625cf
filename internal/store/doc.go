// Package store defines the persistence interfaces and shared storage
// errors. Concrete implementations live under internal/platform.
package store
