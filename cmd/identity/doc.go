// Package identity holds user records and the credential check behind login.
//
// Authenticate never tells the caller whether an email was unknown or the
// password was wrong; both surface as ErrInvalidCredentials.
package identity
