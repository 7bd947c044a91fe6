// Package authn implements credential verification and token lifecycles:
// password authentication, remember-me persistent login, email-token account
// activation, and the password-reset flow with its expiry window.
//
// Every verification operation answers with a bare bool. Unknown email,
// wrong token, inactive account and absent digest are deliberately
// indistinguishable to callers so the API cannot be used as an enumeration
// or token-guessing oracle.
package authn
