// Package clock provides a tiny time abstraction.
//
// Code that compares against expiry or cooldown deadlines depends on Clocker
// instead of calling time.Now directly, so tests can drive time with Manual.
package clock
