package config

import (
	"fmt"
	"sort"
	"time"
)

// Config is the narrative manifest: which scenes exist, where the scroll
// crossfades happen, how the video transition is timed and where the loop
// point sits. Loaded once at startup and immutable afterwards.
type Config struct {
	Version     string           `yaml:"version"`
	Scenes      []SceneConfig    `yaml:"scenes"`
	Breakpoints []PairConfig     `yaml:"breakpoints"`
	Transition  TransitionConfig `yaml:"transition"`
	Loop        LoopConfig       `yaml:"loop"`
	Preview     PreviewConfig    `yaml:"preview"`
}

// SceneConfig declares a scene layer and its baseline visibility outside any
// crossfade range.
type SceneConfig struct {
	ID      string  `yaml:"id"`
	Kind    string  `yaml:"kind"` // "fragments", "drift", "storyboard"
	Visible float64 `yaml:"visible"`
	Artwork string  `yaml:"artwork,omitempty"` // storyboard scenes only
	Page    int     `yaml:"page,omitempty"`
}

// PairConfig is one crossfade breakpoint pair: scene A fades out and scene B
// fades in over [start, end] of normalized progress.
type PairConfig struct {
	SceneA string  `yaml:"scene_a"`
	SceneB string  `yaml:"scene_b"`
	Start  float64 `yaml:"start"`
	End    float64 `yaml:"end"`
}

// TransitionConfig times the video-backed scene swap.
type TransitionConfig struct {
	From      string  `yaml:"from"`
	To        string  `yaml:"to"`
	PreRollMs int     `yaml:"pre_roll_ms"`
	SettleMs  int     `yaml:"settle_ms"`
	Rate      float64 `yaml:"rate"`
	// MaxPlayMs bounds a stalled playback; 0 disables the watchdog and keeps
	// the original timing behavior.
	MaxPlayMs int `yaml:"max_play_ms,omitempty"`
}

// LoopConfig describes the authored loop point and the corrective reset.
type LoopConfig struct {
	Start     float64 `yaml:"start"`
	End       float64 `yaml:"end"`
	Epsilon   float64 `yaml:"epsilon"`
	Anchor    float64 `yaml:"anchor"` // reset target, progress space
	SettleMs  int     `yaml:"settle_ms"`
	TimeoutMs int     `yaml:"timeout_ms"`
}

// PreviewConfig drives the offline timeline export.
type PreviewConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Frames   int    `yaml:"frames"`
	Workers  int    `yaml:"workers"`
	OutDir   string `yaml:"out_dir"`
	ShareURL string `yaml:"share_url,omitempty"`
	Sheet    bool   `yaml:"sheet"`
	Stats    bool   `yaml:"stats"`
}

func (t TransitionConfig) PreRoll() time.Duration { return time.Duration(t.PreRollMs) * time.Millisecond }
func (t TransitionConfig) Settle() time.Duration  { return time.Duration(t.SettleMs) * time.Millisecond }
func (t TransitionConfig) MaxPlay() time.Duration { return time.Duration(t.MaxPlayMs) * time.Millisecond }

func (l LoopConfig) Settle() time.Duration  { return time.Duration(l.SettleMs) * time.Millisecond }
func (l LoopConfig) Timeout() time.Duration { return time.Duration(l.TimeoutMs) * time.Millisecond }

// Default returns a manifest with the values the narrative ships with.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Scenes: []SceneConfig{
			{ID: "monolith", Kind: "fragments", Visible: 1.0},
			{ID: "drift", Kind: "drift", Visible: 0.0},
			{ID: "shards", Kind: "fragments", Visible: 0.0},
		},
		Breakpoints: []PairConfig{
			{SceneA: "monolith", SceneB: "drift", Start: 0.10, End: 0.15},
			{SceneA: "drift", SceneB: "monolith", Start: 0.55, End: 0.62},
		},
		Transition: TransitionConfig{
			From:      "monolith",
			To:        "shards",
			PreRollMs: 200,
			SettleMs:  600,
			Rate:      2.0,
		},
		Loop: LoopConfig{
			Start:     0.05,
			End:       0.70,
			Epsilon:   0.005,
			Anchor:    0.06,
			SettleMs:  150,
			TimeoutMs: 1500,
		},
		Preview: PreviewConfig{
			Width:   1280,
			Height:  720,
			Frames:  120,
			Workers: 4,
			OutDir:  "output",
			Sheet:   true,
		},
	}
}

// Validate checks the manifest once at startup. Breakpoint and loop mistakes
// are programmer errors and must fail here, not produce undefined opacities
// at runtime.
func (c *Config) Validate() error {
	if len(c.Scenes) == 0 {
		return fmt.Errorf("manifest declares no scenes")
	}

	ids := make(map[string]bool, len(c.Scenes))
	for _, s := range c.Scenes {
		if s.ID == "" {
			return fmt.Errorf("scene with empty id")
		}
		if ids[s.ID] {
			return fmt.Errorf("duplicate scene id %q", s.ID)
		}
		if s.Visible < 0 || s.Visible > 1 {
			return fmt.Errorf("scene %q: visible %.3f outside [0,1]", s.ID, s.Visible)
		}
		ids[s.ID] = true
	}

	if err := validatePairs(c.Breakpoints, ids); err != nil {
		return err
	}

	t := c.Transition
	if t.From != "" || t.To != "" {
		if !ids[t.From] {
			return fmt.Errorf("transition: unknown scene %q", t.From)
		}
		if !ids[t.To] {
			return fmt.Errorf("transition: unknown scene %q", t.To)
		}
		if t.From == t.To {
			return fmt.Errorf("transition: from and to are both %q", t.From)
		}
		if t.Rate <= 0 {
			return fmt.Errorf("transition: rate %.3f must be positive", t.Rate)
		}
		if t.PreRollMs < 0 || t.SettleMs < 0 || t.MaxPlayMs < 0 {
			return fmt.Errorf("transition: negative delay")
		}
	}

	l := c.Loop
	if l.End > 0 {
		if l.Start < 0 || l.End > 1 || l.Start >= l.End {
			return fmt.Errorf("loop: range [%.3f, %.3f] invalid", l.Start, l.End)
		}
		if l.Anchor < 0 || l.Anchor > l.End {
			return fmt.Errorf("loop: anchor %.3f outside [0, %.3f]", l.Anchor, l.End)
		}
		if l.Epsilon < 0 {
			return fmt.Errorf("loop: negative epsilon")
		}
		if l.TimeoutMs <= 0 {
			return fmt.Errorf("loop: timeout_ms must be positive, the reset flag must never stick")
		}
	}

	return nil
}

func validatePairs(pairs []PairConfig, ids map[string]bool) error {
	for _, p := range pairs {
		if !ids[p.SceneA] {
			return fmt.Errorf("breakpoint: unknown scene %q", p.SceneA)
		}
		if !ids[p.SceneB] {
			return fmt.Errorf("breakpoint: unknown scene %q", p.SceneB)
		}
		if p.Start < 0 || p.End > 1 {
			return fmt.Errorf("breakpoint %s->%s: [%.3f, %.3f] outside [0,1]", p.SceneA, p.SceneB, p.Start, p.End)
		}
		if p.Start > p.End {
			return fmt.Errorf("breakpoint %s->%s: start %.3f after end %.3f", p.SceneA, p.SceneB, p.Start, p.End)
		}
	}

	// Ranges may touch at an endpoint but must not overlap, otherwise two
	// pairs would claim the same progress value.
	sorted := make([]PairConfig, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Start < prev.End {
			return fmt.Errorf("breakpoints %s->%s and %s->%s overlap",
				prev.SceneA, prev.SceneB, cur.SceneA, cur.SceneB)
		}
	}

	return nil
}

// Scene returns the scene config for id, if declared.
func (c *Config) Scene(id string) (SceneConfig, bool) {
	for _, s := range c.Scenes {
		if s.ID == id {
			return s, true
		}
	}
	return SceneConfig{}, false
}

// BaseVisibility returns the authored default opacity per scene.
func (c *Config) BaseVisibility() map[string]float64 {
	base := make(map[string]float64, len(c.Scenes))
	for _, s := range c.Scenes {
		base[s.ID] = s.Visible
	}
	return base
}
