package icadtone

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of recognized options for a single Analyze call,
// per spec.md §6.
type Config struct {
	MatchingThresholdPct float64 `yaml:"matching_threshold"`
	TimeResolutionMs     float64 `yaml:"time_resolution_ms"`

	Frontend FrontendConfig `yaml:"frontend"`
	Grouper  GrouperConfig  `yaml:"grouper"`
	TwoTone  TwoToneConfig  `yaml:"two_tone"`
	HiLow    HiLowConfig    `yaml:"hi_low"`
	Long     LongConfig     `yaml:"long_tone"`
	Pulsed   PulsedConfig   `yaml:"pulsed"`

	DetectPulsed  bool `yaml:"detect_pulsed"`
	DetectTwoTone bool `yaml:"detect_two_tone"`
	DetectLong    bool `yaml:"detect_long"`
	DetectHiLow   bool `yaml:"detect_hi_low"`
	DetectMDC     bool `yaml:"detect_mdc"`
	DetectDTMF    bool `yaml:"detect_dtmf"`

	Debug bool `yaml:"debug"`

	MQTT MQTTConfig `yaml:"mqtt"`
}

// FrontendConfig controls the STFT frontend (spec.md §4.1).
type FrontendConfig struct {
	FreqLoHz            float64 `yaml:"freq_lo_hz"`
	FreqHiHz            float64 `yaml:"freq_hi_hz"`
	SilenceBelowGlobalDb float64 `yaml:"silence_below_global_db"`
	SNRAboveNoiseDb      float64 `yaml:"snr_above_noise_db"`
}

// GrouperConfig controls the frame grouper (spec.md §4.2).
type GrouperConfig struct {
	AbsCapHz          float64 `yaml:"abs_cap_hz"`
	ForceSplitStepHz  float64 `yaml:"force_split_step_hz"`
	SplitLookaheadN   int     `yaml:"split_lookahead_frames"`
	MergeShortGapsMs  float64 `yaml:"merge_short_gaps_ms"`
}

// TwoToneConfig controls the Quick Call detector (spec.md §4.4).
type TwoToneConfig struct {
	ToneAMinLengthS       float64 `yaml:"tone_a_min_length"`
	ToneBMinLengthS       float64 `yaml:"tone_b_min_length"`
	MaxGapBetweenABS      float64 `yaml:"max_gap_between_a_b"`
	ToneBwHz              float64 `yaml:"bw_hz"`
	MinPairSeparationHz   float64 `yaml:"min_pair_separation_hz"`
	MaskAOnly             bool    `yaml:"mask_a_only"`
}

// HiLowConfig controls the warble detector (spec.md §4.6).
type HiLowConfig struct {
	IntervalLengthS     float64 `yaml:"interval_length"`
	MinAlternations     int     `yaml:"min_alternations"`
	ToneBwHz            float64 `yaml:"tone_bw_hz"`
	MinPairSeparationHz float64 `yaml:"min_pair_separation_hz"`
}

// LongConfig controls the long-tone detector (spec.md §4.5).
type LongConfig struct {
	MinDurationS float64 `yaml:"min_duration"`
	BwHz         float64 `yaml:"bw_hz"`
	MinFreqHz    float64 `yaml:"min_freq_hz"`
}

// PulsedConfig controls the pulsed single-tone detector (spec.md §4.3).
type PulsedConfig struct {
	BwHz          float64 `yaml:"bw_hz"`
	MinCycles     int     `yaml:"min_cycles"`
	MinOnMs       float64 `yaml:"min_on_ms"`
	MaxOnMs       float64 `yaml:"max_on_ms"`
	MinOffMs      float64 `yaml:"min_off_ms"`
	MaxOffMs      float64 `yaml:"max_off_ms"`
	AutoCenterBandHz float64 `yaml:"auto_center_band_hz"`
	ModeBinHz     float64 `yaml:"mode_bin_hz"`
	OffZeroRatio  float64 `yaml:"off_zero_ratio"`
}

// MQTTConfig controls the optional detection publisher.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
	Retain      bool   `yaml:"retain"`
}

// DefaultConfig returns a Config populated with the defaults documented in
// spec.md §6.
func DefaultConfig() Config {
	return Config{
		MatchingThresholdPct: 2.5,
		TimeResolutionMs:     50,
		Frontend: FrontendConfig{
			FreqLoHz:             200,
			FreqHiHz:             3000,
			SilenceBelowGlobalDb: -28,
			SNRAboveNoiseDb:      6,
		},
		Grouper: GrouperConfig{
			AbsCapHz:         15,
			ForceSplitStepHz: 0, // 0 disables force-split
			SplitLookaheadN:  1,
			MergeShortGapsMs: 0,
		},
		TwoTone: TwoToneConfig{
			ToneAMinLengthS:     0.75,
			ToneBMinLengthS:     2.5,
			MaxGapBetweenABS:    0.2,
			ToneBwHz:            15,
			MinPairSeparationHz: 100,
			MaskAOnly:           true,
		},
		HiLow: HiLowConfig{
			IntervalLengthS:     0.25,
			MinAlternations:     6,
			ToneBwHz:            15,
			MinPairSeparationHz: 100,
		},
		Long: LongConfig{
			MinDurationS: 3.5,
			BwHz:         15,
			MinFreqHz:    200,
		},
		Pulsed: PulsedConfig{
			BwHz:             15,
			MinCycles:        6,
			MinOnMs:          100,
			MaxOnMs:          1000,
			MinOffMs:         40,
			MaxOffMs:         500,
			AutoCenterBandHz: 15,
			ModeBinHz:        10,
			OffZeroRatio:     0.8,
		},
		DetectPulsed:  true,
		DetectTwoTone: true,
		DetectLong:    true,
		DetectHiLow:   true,
		DetectMDC:     false,
		DetectDTMF:    false,
	}
}

// Validate checks the documented bounds on Config and returns a
// ConfigurationInvalid error describing the first violation found.
func (c Config) Validate() error {
	if c.MatchingThresholdPct <= 0 {
		return errConfigurationInvalid("matching_threshold must be > 0", nil)
	}
	if c.TimeResolutionMs <= 0 {
		return errConfigurationInvalid("time_resolution_ms must be > 0", nil)
	}
	if c.Frontend.FreqLoHz >= c.Frontend.FreqHiHz {
		return errConfigurationInvalid(
			fmt.Sprintf("frontend frequency band low (%.1f) must be less than high (%.1f)",
				c.Frontend.FreqLoHz, c.Frontend.FreqHiHz), nil)
	}
	if c.TwoTone.ToneBwHz <= 0 || c.HiLow.ToneBwHz <= 0 || c.Long.BwHz <= 0 || c.Pulsed.BwHz <= 0 {
		return errConfigurationInvalid("all bw_hz parameters must be > 0", nil)
	}
	if c.Pulsed.MinOnMs > c.Pulsed.MaxOnMs {
		return errConfigurationInvalid(
			fmt.Sprintf("pulsed min_on_ms (%.1f) must be <= max_on_ms (%.1f)", c.Pulsed.MinOnMs, c.Pulsed.MaxOnMs), nil)
	}
	if c.Pulsed.MinOffMs > c.Pulsed.MaxOffMs {
		return errConfigurationInvalid(
			fmt.Sprintf("pulsed min_off_ms (%.1f) must be <= max_off_ms (%.1f)", c.Pulsed.MinOffMs, c.Pulsed.MaxOffMs), nil)
	}
	if c.Pulsed.MinCycles < 1 {
		return errConfigurationInvalid("pulsed min_cycles must be >= 1", nil)
	}
	if c.HiLow.MinAlternations < 1 {
		return errConfigurationInvalid("hi_low min_alternations must be >= 1", nil)
	}
	return nil
}

// LoadConfigFile reads and parses a YAML config file, filling unset fields
// from DefaultConfig and validating the result.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errConfigurationInvalid("failed to read config file", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errConfigurationInvalid("failed to parse config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
