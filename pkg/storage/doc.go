/*
Package storage is the durable, SQLite-backed persistence layer for
orbit-agent. One Store wraps a single *sql.DB and exposes one method
per entity operation for containers, tasks, apps, snapshots, and
api tokens.

# Schema

Tables are created with idempotent CREATE TABLE IF NOT EXISTS
statements on Open, followed by additive ALTER TABLE migrations for
columns introduced after the initial schema (api_tokens.scopes,
expires_at, last_used_at). A migration failing because the column
already exists is treated as success — see Store.migrate in store.go.

Nested fields (Container.Tags, AppInstance.EntryPoints, ApiToken.Scopes)
are stored as JSON text in a single column. A row whose JSON column
fails to parse is dropped from list results rather than failing the
whole query, so one corrupted row can never break an endpoint.

# Known limitations

Deleting a container does not cascade to its apps or snapshots — those
rows become orphans. There is also no uniqueness constraint on
api_tokens.hash. Both match the behavior of the system this package
was modeled on and are tracked as accepted limitations rather than
silently changed.
*/
package storage
