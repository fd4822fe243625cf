// Package service implements the application's business operations,
// orchestrating store access and transaction boundaries.
package service
