package domain

// DefaultEngineID identifies the single shared engine used when a descriptor names none.
const DefaultEngineID = "stagehand_default_engine"

// Extras keys used by the bundle-style descriptor encoding.
const (
	KeyCachedEngineID         = "cached_engine_id"
	KeyDestroyEngineWithHost  = "destroy_engine_with_activity"
	KeyBackgroundMode         = "background_mode"
	KeyURL                    = "url"
	KeyURLParams              = "url_param"
	KeyUniqueID               = "unique_id"
	KeyEnableStateRestoration = "enable_state_restoration"
	KeyResult                 = "activity_result"
)
