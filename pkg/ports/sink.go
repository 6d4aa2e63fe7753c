package ports

// Reply receives the router's answer to a pop request. It may be nil.
type Reply func(err error)

// NotificationSink relays container events to the cross-boundary router.
// Calls are synchronous and fire-and-forget from the coordinator's perspective.
type NotificationSink interface {
	OnContainerCreated(c Container)
	OnContainerAppeared(c Container)
	OnContainerDisappeared(c Container)
	OnContainerDestroyed(c Container)
	// PopRoute asks the router to navigate back from c.
	PopRoute(c Container, reply Reply)
}
