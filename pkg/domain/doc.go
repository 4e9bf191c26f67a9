/*
Package domain contains the core domain models of the guide engine.

It defines the fundamental entities of a dialogue scenario, such as Steps, Events,
and Transition Rules, together with the error taxonomy shared by the loader, the
validator, the session store and the action dispatcher. This package is kept pure
and free of external dependencies like I/O or persistence.

# Key Entities

  - Step: A named conversational state (a node of the dialogue graph).
  - Event: A named trigger declared on a step; it may move the session to another step and/or run an action.
  - TransitionRule: A flattened (event, source, destination) triple consumed by the session store.
  - Scenario: The raw declarative document (steps, initial step, terminal step).
  - Response: What the dialogue boundary answers to the caller for one interaction.
*/
package domain
