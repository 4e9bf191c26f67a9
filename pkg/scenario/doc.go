/*
Package scenario turns a declarative dialogue document into a validated, immutable Graph.

The pipeline runs once at load time:

 1. Parse decodes a YAML or JSON document, rejecting raw step name collisions and schema violations.
 2. Validate checks duplicates, undefined steps, undefined actions and reachability from the initial step.
 3. Compile flattens the steps into transition rules for the session store.

Build chains Validate and Compile. A Graph is read-only and safe to share between goroutines.
*/
package scenario
