/*
Package services orchestrates pkg/storage, pkg/sandbox, pkg/events,
and pkg/task into the business operations the HTTP layer exposes:
container, app, and snapshot lifecycle, plus service-token issuance.

Every mutating method follows the same shape: start a task.Recorder,
do the work, advance or fail the recorder, return the task. Read-only
methods (Get*, List*) are thin pass-throughs to the store.
*/
package services
