/*
Package ports defines the driven ports (interfaces) for the guide engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to read scenarios from various sources and to invoke side-effects
supplied by the integrator.

# Key Interfaces

  - ScenarioLoader: Responsible for producing the raw Scenario document (e.g., from a file, a directory or Redis).
  - ActionCatalog: Answers whether an action name is known (used at validation time).
  - ActionDispatcher: Invokes a named action with validated arguments (used at runtime).
*/
package ports
