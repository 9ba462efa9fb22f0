// Package models defines the client-side session data model: the User
// record, the Session pairing a user with its tokens, and subscription
// tiers.
package models
