/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/shopmedia/internal/imagepipe"
	"github.com/friendsincode/shopmedia/internal/transcode"
)

// Config covers process level configuration read from environment variables.
// Command-line flags override these values; the environment supplies the
// workstation-wide defaults.
type Config struct {
	Environment string

	// External tool overrides. Empty means "locate automatically".
	FFmpegBin   string
	ExifToolBin string

	// Default roots for batch runs.
	InputRoot  string
	OutputRoot string
	CSVPath    string

	DefaultTitle string
	DefaultTags  string

	// DefaultCRF overrides the stock encode quality; 0 keeps the
	// built-in value. Flags still win over this.
	DefaultCRF int

	// ProfilePath points at an optional YAML profile with encode and
	// enhancement overrides.
	ProfilePath string

	// S3 object storage configuration for fetch/push.
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string // For S3-compatible services (MinIO, Spaces, etc.)
	S3UsePathStyle    bool   // Required for MinIO

	LegacyEnvWarnings []string
}

// Profile is the optional YAML overlay for encode settings and the image
// enhancement recipe. Zero values leave the built-in defaults untouched.
type Profile struct {
	Video struct {
		Codec       string `yaml:"codec"`
		Preset      string `yaml:"preset"`
		CRF         int    `yaml:"crf"`
		AudioCodec  string `yaml:"audio_codec"`
		AudioRate   string `yaml:"audio_rate"`
		Container   string `yaml:"container"`
		ScaleWidth  int    `yaml:"scale_width"`
		ScaleHeight int    `yaml:"scale_height"`
	} `yaml:"video"`
	Enhance imagepipe.EnhanceParams `yaml:"enhance"`
}

// Load reads environment variables and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:  getEnvAny([]string{"SHOPMEDIA_ENV"}, "development"),
		FFmpegBin:    getEnvAny([]string{"SHOPMEDIA_FFMPEG_BIN", "FFMPEG_BIN"}, ""),
		ExifToolBin:  getEnvAny([]string{"SHOPMEDIA_EXIFTOOL_BIN", "EXIFTOOL_BIN"}, ""),
		InputRoot:    getEnvAny([]string{"SHOPMEDIA_INPUT_ROOT"}, ""),
		OutputRoot:   getEnvAny([]string{"SHOPMEDIA_OUTPUT_ROOT"}, ""),
		CSVPath:      getEnvAny([]string{"SHOPMEDIA_CSV_PATH"}, ""),
		DefaultTitle: getEnvAny([]string{"SHOPMEDIA_DEFAULT_TITLE"}, ""),
		DefaultTags:  getEnvAny([]string{"SHOPMEDIA_DEFAULT_TAGS"}, ""),
		DefaultCRF:   getEnvIntAny([]string{"SHOPMEDIA_CRF"}, 0),
		ProfilePath:  getEnvAny([]string{"SHOPMEDIA_PROFILE"}, ""),

		S3AccessKeyID:     getEnvAny([]string{"SHOPMEDIA_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, ""),
		S3SecretAccessKey: getEnvAny([]string{"SHOPMEDIA_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, ""),
		S3Region:          getEnvAny([]string{"SHOPMEDIA_S3_REGION", "AWS_REGION"}, "us-east-1"),
		S3Bucket:          getEnvAny([]string{"SHOPMEDIA_S3_BUCKET", "S3_BUCKET"}, ""),
		S3Endpoint:        getEnvAny([]string{"SHOPMEDIA_S3_ENDPOINT", "S3_ENDPOINT"}, ""),
		S3UsePathStyle:    getEnvBoolAny([]string{"SHOPMEDIA_S3_USE_PATH_STYLE", "S3_USE_PATH_STYLE"}, false),
	}

	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

// LoadProfile reads the YAML profile at path. A missing path is not an
// error; the zero Profile keeps every default.
func LoadProfile(path string) (Profile, error) {
	var p Profile
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}

// ApplySpec overlays the profile's video section onto a transcode spec.
func (p Profile) ApplySpec(s transcode.Spec) transcode.Spec {
	if p.Video.Codec != "" {
		s.VCodec = p.Video.Codec
	}
	if p.Video.Preset != "" {
		s.Preset = p.Video.Preset
	}
	if p.Video.CRF > 0 {
		s.CRF = p.Video.CRF
	}
	if p.Video.AudioCodec != "" {
		s.ACodec = p.Video.AudioCodec
	}
	if p.Video.AudioRate != "" {
		s.ABitrate = p.Video.AudioRate
	}
	if p.Video.Container != "" {
		s.Container = p.Video.Container
	}
	if p.Video.ScaleWidth > 0 {
		s.Width = p.Video.ScaleWidth
	}
	if p.Video.ScaleHeight > 0 {
		s.Height = p.Video.ScaleHeight
	}
	return s
}

// EnhanceParams returns the profile's enhancement recipe, falling back to
// the stock values where the profile leaves a knob at zero.
func (p Profile) EnhanceParams() imagepipe.EnhanceParams {
	out := imagepipe.DefaultEnhanceParams()
	in := p.Enhance
	if in.Brightness > 0 {
		out.Brightness = in.Brightness
	}
	if in.Contrast > 0 {
		out.Contrast = in.Contrast
	}
	if in.Saturation > 0 {
		out.Saturation = in.Saturation
	}
	if in.Sharpness > 0 {
		out.Sharpness = in.Sharpness
	}
	if in.Gamma > 0 {
		out.Gamma = in.Gamma
	}
	if in.RGain > 0 {
		out.RGain = in.RGain
	}
	if in.GGain > 0 {
		out.GGain = in.GGain
	}
	if in.BGain > 0 {
		out.BGain = in.BGain
	}
	return out
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"FFMPEG_PATH":   "use SHOPMEDIA_FFMPEG_BIN (or FFMPEG_BIN)",
		"EXIFTOOL_PATH": "use SHOPMEDIA_EXIFTOOL_BIN (or EXIFTOOL_BIN)",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}
