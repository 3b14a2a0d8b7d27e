// Package google handles OAuth2 authentication against Google.
//
// The Authenticator owns the tokens stored in settings: it runs the
// interactive browser consent flow with a one-shot local callback
// listener, exchanges authorization codes, and refreshes the access
// token on demand. All successful mutations are persisted immediately.
package google
