/*
Package stagehand coordinates screen containers that share a small pool of rendering engines.

A host (an activity manager, a window system, a test driver) creates containers and
delivers lifecycle signals for them: create, start, resume, pause, stop, destroy,
and back. The signals arrive asynchronously, may be duplicated, and on some host
versions are replayed out of order. Stagehand turns that stream into attach and
detach operations so that, for every engine, at most one container draws through
it at any instant, and the outgoing container always detaches before the incoming
one attaches.

# Concepts

  - Container: one navigable screen, identified by a unique id and a URL.
  - Engine: a shared rendering backend. Containers take turns attaching to it.
  - Registry: the live containers, plus the stack of resumed ones. The top of
    that stack is the foreground container.
  - Notification Sink: the cross-boundary router that learns when containers
    are created, appear, disappear, and are destroyed, and that handles back
    navigation.

# Usage

Build a descriptor, then feed host signals to the coordinator:

	engine := virtual.NewEngine(domain.DefaultEngineID, nil)
	co, err := stagehand.New(stagehand.WithEngine(engine))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	desc, err := co.Launch(ctx, launch.NewBuilder().URL("/home"))
	if err != nil {
		log.Fatal(err)
	}
	c, err := co.Instantiate(ctx, desc.UniqueID, virtual.NewSurfaces(desc.UniqueID, nil))
	if err != nil {
		log.Fatal(err)
	}

	_ = co.Resume(ctx, c.UniqueID()) // c is now attached to the engine

Hosts whose activity manager replays resume/pause pairs under transparent
containers (Android 10, API 29) should pass WithHost so those signals are ignored.

# Adapters

The pkg/adapters tree carries the driven side: in-memory and Redis descriptor
stores, a Redis launch lock, virtual engines and surfaces for tests and replay,
notification sinks, an HTTP bridge, and an MCP server.
*/
package stagehand
