/*
Package http exposes a coordinator over HTTP so an out-of-process host driver can
create containers and deliver lifecycle signals.

Routes:

	GET  /health
	GET  /info
	GET  /containers                         registry snapshot
	POST /containers                         launch and create a container
	GET  /containers/{id}
	POST /containers/{id}/signals/{signal}   start, resume, pause, stop, destroy, back
	POST /containers/{id}/finish             close with an optional result payload
	GET  /engines/{id}                       attached owner and surfaces
	GET  /events?container={id}              server-sent coordinator events
	GET  /metrics                            prometheus exposition

Containers created over HTTP draw through virtual surfaces unless a SurfaceFactory
is supplied.
*/
package http
