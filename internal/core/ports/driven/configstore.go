package driven

// ConfigStore holds flat, dot-separated settings keys such as
// "recognition.threshold" or "descriptors.source".
// Typed getters return the zero value for missing keys and for values of
// another type; GetInt and GetFloat accept any numeric value.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetFloat(key string) float64

	// Set stores a value. File-backed stores persist it immediately.
	Set(key string, value any) error

	// Save writes every value to storage.
	Save() error

	// Load replaces the values with those in storage.
	Load() error

	// Path returns where the values live, or ":memory:".
	Path() string
}
