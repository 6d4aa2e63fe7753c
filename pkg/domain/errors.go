package domain

import "errors"

// ErrMissingURL is the configuration error reported when a container has no URL.
var ErrMissingURL = errors.New("container url is missing: set it via launch.Builder.URL")

// ErrContainerNotFound is returned when a unique id is not in the registry.
var ErrContainerNotFound = errors.New("container not found")

// ErrDuplicateContainer is returned when a unique id is already live.
var ErrDuplicateContainer = errors.New("container already registered")

// ErrEngineNotFound is returned when a descriptor names an engine the coordinator does not know.
var ErrEngineNotFound = errors.New("engine not found")

// ErrMissingSurface is returned when a container is created without a render or control surface.
var ErrMissingSurface = errors.New("container surface is missing")

// ErrDescriptorNotFound is returned when a descriptor cannot be found in the store.
var ErrDescriptorNotFound = errors.New("descriptor not found")

var (
	ErrUnknownSignal         = errors.New("unknown signal")
	ErrUnknownStage          = errors.New("unknown lifecycle stage")
	ErrUnknownBackgroundMode = errors.New("unknown background mode")
)
