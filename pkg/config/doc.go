/*
Package config loads the agent's runtime configuration from four
layers, each overriding the last: compiled-in defaults, the repo-local
config/orbit.toml file, the instance-local orbit-data/config.local.toml
file, then the process environment.

Load never fails on a missing TOML file — only a malformed one — since
both files are optional overlays on the built-in defaults.
*/
package config
