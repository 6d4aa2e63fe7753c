/*
Package ports defines the driven ports (interfaces) of the Stagehand coordinator.

These interfaces decouple the attachment logic from the host platform, allowing the
coordinator to drive any rendering engine, surface implementation, or cross-boundary
router without knowing how they work.

# Key Interfaces

  - Container: The public query surface of a live screen container.
  - NotificationSink: Receives created/appeared/disappeared/destroyed and pop-route events.
  - Engine, Renderer, LifecycleNotifier: The shared rendering backend and its knobs.
  - RenderSurface, ControlSurfaceBinder, ControlSurfaceHandle: Per-container attachment points.
  - DescriptorStore: Persists creation descriptors until the host instantiates them.
  - DistributedLocker: Provides distributed locking across launcher replicas.
*/
package ports
