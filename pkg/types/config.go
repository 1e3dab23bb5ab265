package types

import "time"

// HTTPConfig holds shared HTTP settings used by every client that talks to
// an external knowledge base.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "namedropper/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SpotlightConfig holds settings for the DBpedia Spotlight recognizer.
type SpotlightConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the Spotlight REST endpoint (default the public DBpedia instance).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Confidence is the minimum disambiguation confidence (default 0.4).
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Support is the minimum number of inlinks a resource needs (default 20).
	Support int `json:"support" yaml:"support"`

	// Types restricts results to these comma separated types (default
	// Person, Place and Organisation).
	Types string `json:"types" yaml:"types"`

	// PostThreshold is the text length at which requests switch from GET to
	// a form POST (default 5000).
	PostThreshold int `json:"post_threshold" yaml:"post_threshold"`
}

// Vocabulary names a tag/attribute policy.
type Vocabulary string

const (
	VocabularyTEI Vocabulary = "tei"
	VocabularyEAD Vocabulary = "ead"
)

// AnnotationConfig holds settings for the annotate command.
type AnnotationConfig struct {
	// Vocabulary selects the markup inserted: tei or ead.
	Vocabulary Vocabulary `json:"vocabulary" yaml:"vocabulary"`

	// VIAF enables VIAF identifiers for people.
	VIAF bool `json:"viaf" yaml:"viaf"`

	// GeoNames enables GeoNames identifiers for places.
	GeoNames bool `json:"geonames" yaml:"geonames"`

	// TrackChanges wraps every edit in Oxygen change-tracking markers.
	TrackChanges bool `json:"track_changes" yaml:"track_changes"`

	// Author is recorded on change-tracking markers (default "namedropper").
	Author string `json:"author" yaml:"author"`

	// Language selects labels and descriptions (default "en").
	Language string `json:"language" yaml:"language"`

	// Schema is an optional content-model file checked after each insertion.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`

	// Jobs bounds how many documents are annotated concurrently (default 4).
	Jobs int `json:"jobs" yaml:"jobs"`
}

// CacheConfig holds settings for the persistent cross-reference cache.
type CacheConfig struct {
	// Path is the SQLite file; empty keeps the cache in memory only.
	Path string `json:"path" yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is one of text, json or logfmt (default text).
	Format string `json:"format" yaml:"format"`
}

// Config groups all namedropper settings.
type Config struct {
	Spotlight  SpotlightConfig  `json:"spotlight" yaml:"spotlight"`
	Annotation AnnotationConfig `json:"annotation" yaml:"annotation"`
	HTTP       HTTPConfig       `json:"http" yaml:"http"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	Log        LogConfig        `json:"log" yaml:"log"`
}
