// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/namedropper/internal/httputil"
	"github.com/pdiddy/namedropper/internal/spotlight"
	"github.com/pdiddy/namedropper/internal/trackchanges"
	"github.com/pdiddy/namedropper/pkg/types"
)

const defaultCachePath = ".namedropper/xref.db"

func setDefaults() {
	viper.SetDefault("spotlight.base_url", spotlight.DefaultBaseURL)
	viper.SetDefault("spotlight.confidence", 0.4)
	viper.SetDefault("spotlight.support", 20)
	viper.SetDefault("spotlight.types", "Person,Place,Organisation")
	viper.SetDefault("spotlight.post_threshold", 5000)
	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("http.user_agent", httputil.DefaultUserAgent)
	viper.SetDefault("annotation.author", trackchanges.DefaultAuthor)
	viper.SetDefault("annotation.language", "en")
	viper.SetDefault("annotation.jobs", 4)
	viper.SetDefault("cache.path", defaultCachePath)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// bindFlag lets a flag override the config key when it is set.
func bindFlag(key string, f *pflag.Flag) {
	if f != nil {
		_ = viper.BindPFlag(key, f)
	}
}

// loadConfig assembles the settings from defaults, the config file,
// NAMEDROPPER_* environment variables and flags, in increasing priority.
func loadConfig() types.Config {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}
	return types.Config{
		HTTP: httpCfg,
		Spotlight: types.SpotlightConfig{
			HTTPConfig:    httpCfg,
			BaseURL:       viper.GetString("spotlight.base_url"),
			Confidence:    viper.GetFloat64("spotlight.confidence"),
			Support:       viper.GetInt("spotlight.support"),
			Types:         viper.GetString("spotlight.types"),
			PostThreshold: viper.GetInt("spotlight.post_threshold"),
		},
		Annotation: types.AnnotationConfig{
			Vocabulary:   types.Vocabulary(viper.GetString("annotation.vocabulary")),
			VIAF:         viper.GetBool("annotation.viaf"),
			GeoNames:     viper.GetBool("annotation.geonames"),
			TrackChanges: viper.GetBool("annotation.track_changes"),
			Author:       viper.GetString("annotation.author"),
			Language:     viper.GetString("annotation.language"),
			Schema:       viper.GetString("annotation.schema"),
			Jobs:         viper.GetInt("annotation.jobs"),
		},
		Cache: types.CacheConfig{Path: viper.GetString("cache.path")},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
	}
}
