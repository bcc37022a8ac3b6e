/*
Package auth is the token-scoped authorization subsystem: a
hot-reloadable static policy (admin token, static token list) layered
in front of dynamically issued, store-backed service tokens.

Manager.Authorize resolves a bearer token to an AuthContext in three
steps, first match wins: the configured admin token, then the static
token list, then the store's dynamic tokens. Every route the HTTP
layer exposes calls Authorize once and then checks the returned
context against the scope(s) the route requires.
*/
package auth
