/*
Package domain contains the core domain models of the Stagehand coordinator.

It defines the vocabulary shared by every other package: lifecycle stages, host
signals, background modes, and the creation Descriptor that identifies a screen
container. This package is kept pure and free of external dependencies like I/O
or persistence, following Hexagonal Architecture principles.

# Key Entities

  - LifecycleStage: Position of a container in the host lifecycle (created ... destroyed).
  - Signal: An externally driven lifecycle notification delivered by the host.
  - Descriptor: The immutable creation arguments of a container (URL, params, ids).
  - LifecycleHooks: Callbacks for observing signals, suppression, attach and detach.
*/
package domain
