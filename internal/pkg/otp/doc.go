// Package otp generates numeric one-time passcodes.
//
// Codes are drawn from crypto/rand and zero-padded to a fixed number of
// digits, so every value in [0, 10^digits) is equally likely.
package otp
