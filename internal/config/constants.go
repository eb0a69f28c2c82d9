package config

// Marker names the generator attaches to emitted tables.
const (
	// GeneratorTypeMarker tags types that take part in generic construction.
	GeneratorTypeMarker = "GeneratorType"

	// AccessorMarker tags types that expose member access and dispatch.
	AccessorMarker = "Accessor"
)

// ConfigFileNames are the recognized configuration file names, in lookup order.
var ConfigFileNames = []string{"accessor.yaml", "accessor.yml"}

// LogPrefix prefixes every trace line written by the runtime.
const LogPrefix = "[accessor] "
