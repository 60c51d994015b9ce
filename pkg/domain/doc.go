/*
Package domain contains the core domain models for the steward orchestration
layer.

It defines the value types threaded through the turn pipeline: the TurnState
snapshot, device Actions, classified Intents, capability Operations and their
Response variants, multi-step Plans, and RiskAssessments. This package is kept
pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - TurnState: the immutable snapshot of one user request as it moves through
    the orchestration graph.
  - Action: a typed UI action (click, type, scroll, ...) destined for the
    platform layer.
  - Response: a sealed set of capability call outcomes (Success, Error,
    PermissionRequired, Confirmation).
  - Operation / ParamSpec: the typed contract a capability module exposes.
*/
package domain
