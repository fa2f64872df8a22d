// Package errors provides the coded error type used across minject.
// Every failure raised while registering or resolving bindings is an
// *AppError carrying a machine-readable code, so callers can branch on
// the failure class with IsCode instead of matching messages.
package errors
