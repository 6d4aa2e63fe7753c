/*
Package observability turns coordinator lifecycle hooks into monitoring signals.

Metrics exports prometheus counters for every signal, suppression, attach, and
detach, plus a gauge of attached containers per engine. LogHooks writes the same
events to a structured logger, and Stream fans them out to live subscribers such
as the HTTP event feed.

All three return domain.LifecycleHooks, so they compose with LifecycleHooks.Merge:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := m.Hooks().Merge(observability.LogHooks(logger))
*/
package observability
