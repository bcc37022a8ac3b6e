/*
Package log provides structured logging for orbit-agent using zerolog.

A single global Logger is configured once via Init and shared by every
other package. Callers that want request- or entity-scoped fields
derive a child logger with one of the With* helpers rather than
threading a logger through every function signature.

# Usage

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	containerLog := log.WithContainerID(container.ID)
	containerLog.Info().Msg("sandbox prepared")

	taskLog := log.WithTaskID(task.ID)
	taskLog.Error().Err(err).Msg("task failed")

# Log Levels

  - Debug: verbose detail, development only
  - Info: default production level, one line per significant operation
  - Warn: unexpected but recoverable condition
  - Error: an operation failed and needs investigation

# Design

The global-logger pattern keeps deeply nested calls (store -> task
recorder -> service) from needing a logger parameter threaded through
every layer. Context fields (container_id, task_id, app_id,
snapshot_id) are added via child loggers so call sites never repeat
`.Str("task_id", ...)` by hand.
*/
package log
