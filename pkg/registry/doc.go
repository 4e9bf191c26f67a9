/*
Package registry holds the named side-effect actions a scenario may invoke.

An action declares the request arguments and session keys it needs. Dispatch
checks them before calling the handler, so handlers only ever see the arguments
they asked for plus the live session context. Every invocation is wrapped in an
OpenTelemetry span.
*/
package registry
