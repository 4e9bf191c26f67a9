/*
Package session implements the per-session state machines of the guide engine.

A Store owns one Machine per session id and serializes every operation behind a
single mutex. Trigger (and its boolean form CanTrigger) is a combined
check-and-act: among concurrent callers racing the same event on the same
session, exactly one wins the transition. Trigger reports the rule it applied,
and Undo reverts exactly that rule, so a failed follow-up never undoes a move
made by another caller.

A Reaper periodically evicts sessions that have been idle for longer than the
configured lifetime or that sit on the terminal step. Callers must treat
domain.ErrUninitializedSession as a normal condition: a session may be reaped
between two interactions.
*/
package session
