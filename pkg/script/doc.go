/*
Package script replays host lifecycle signal sequences against a coordinator.

A script lists containers and the signals a host delivers for them, optionally
with expectations checked after each step:

	name: detail over home
	containers:
	  - id: home
	    url: /home
	  - id: detail
	    url: /detail
	    background_mode: transparent
	steps:
	  - {signal: create, container: home}
	  - {signal: create, container: detail}
	  - signal: resume
	    container: home
	    expect:
	      top: home
	      attached: {stagehand_default_engine: home}

Scripts run on virtual engines and surfaces, so the report also carries the
attach/detach journal of every step.
*/
package script
