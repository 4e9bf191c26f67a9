/*
Package observability provides tools for monitoring the guide engine.

Both helpers are expressed as domain.LifecycleHooks so they can be combined with
domain.CombineHooks and handed to the Supervisor:

  - Metrics exports Prometheus counters for sessions, transitions, rejected
    triggers, rollbacks and action calls.
  - LogHooks writes every lifecycle event to a slog logger.
*/
package observability
