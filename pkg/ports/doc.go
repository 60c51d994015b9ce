/*
Package ports defines the driven ports (interfaces) for the steward
orchestration layer.

These interfaces decouple the core pipeline from external implementations: the
embedded inference service, concrete capability modules, the UI platform that
performs resolved actions, and the session persistence backends.

# Key Interfaces

  - Inference: the opaque language-model service (infer / grammar-constrained
    infer / readiness probe).
  - CapabilityModule: a registered unit of device functionality.
  - PermissionSource: answers whether a platform permission is granted.
  - ActionPerformer: executes a resolved UI action on the platform.
  - StateStore / DistributedLocker: session persistence and cross-replica
    coordination.
*/
package ports
