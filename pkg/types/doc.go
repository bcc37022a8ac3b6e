/*
Package types defines the core data structures shared across orbit-agent.

It has no dependencies on any other internal package: pkg/storage persists
these types, pkg/services mutates them, and pkg/api serializes them to JSON
responses.

# Core Types

Sandbox state:
  - Container: a provisioned sandbox (filesystem/registry/runtime tree)
  - AppInstance: an application installed inside a Container
  - Snapshot: an immutable point-in-time capture of a Container

Control plane:
  - Task: the observable record of one asynchronous operation
  - ApiToken: a scoped, hashed service credential
  - SandboxManifest: the JSON document persisted under a sandbox's
    runtime/ directory describing its overlay and registry layout

# Enumeration Pattern

Status fields use typed string constants, each with a Parse* constructor
that falls back to a neutral state instead of returning an error:

	status := types.ParseContainerStatus(row.Status) // unknown -> "ready"

This mirrors how the store reads rows written by older schema versions
and never wants a stray value to become a 500.

# Thread Safety

Values in this package carry no internal synchronization. Callers that
share a Task or Container across goroutines (pkg/task's Recorder does)
are responsible for their own locking.
*/
package types
