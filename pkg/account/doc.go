// Package account holds the user credential record and its storage
// implementations. The record carries one bcrypt digest column per secret
// (password, remember, activation, reset); the authn managers own every
// mutation of those columns.
package account
