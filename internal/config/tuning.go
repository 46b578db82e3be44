package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Tuning holds every balance constant the game core depends on.
type Tuning struct {
	Screen        ScreenTuning       `yaml:"screen"`
	Levels        LevelTuning        `yaml:"levels"`
	Player        PlayerTuning       `yaml:"player"`
	Combo         ComboTuning        `yaml:"combo"`
	PowerUps      PowerUpTuning      `yaml:"power_ups"`
	Ultimate      UltimateTuning     `yaml:"ultimate"`
	Bots          BotTuning          `yaml:"bots"`
	Boss          BossTuning         `yaml:"boss"`
	Collision     CollisionTuning    `yaml:"collision"`
	Tracking      TrackingTuning     `yaml:"tracking"`
	Notifications NotificationTuning `yaml:"notifications"`

	// Derived values (computed after load, not in YAML)
	Derived DerivedTuning `yaml:"-"`
}

// ScreenTuning is the playfield size in pixels.
type ScreenTuning struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// LevelTuning drives progression and sizing.
type LevelTuning struct {
	Start          int             `yaml:"start"`
	Max            int             `yaml:"max"`
	Growth         float64         `yaml:"growth"`
	ScoreToLevelUp []int           `yaml:"score_to_level_up"`
	BaseSizes      map[int]float64 `yaml:"base_sizes"`
}

// PlayerTuning holds player survival and movement constants.
type PlayerTuning struct {
	MaxHealth     int           `yaml:"max_health"`
	Invincibility time.Duration `yaml:"invincibility"`
	FollowFactor  float64       `yaml:"follow_factor"`
}

// ComboTier is one multiplier step; the highest matching Min wins.
type ComboTier struct {
	Min        int     `yaml:"min"`
	Multiplier float64 `yaml:"multiplier"`
}

// ComboTuning controls the combo window and score multipliers.
type ComboTuning struct {
	Timeout            time.Duration `yaml:"timeout"`
	DoubleXPMultiplier float64       `yaml:"double_xp_multiplier"`
	Tiers              []ComboTier   `yaml:"tiers"`
	Milestones         []int         `yaml:"milestones"`
}

// PowerUpTuning configures power-up spawning and effects.
type PowerUpTuning struct {
	Durations       map[string]time.Duration `yaml:"durations"`
	Lifetime        time.Duration            `yaml:"lifetime"`
	SpawnChance     float64                  `yaml:"spawn_chance"`
	SpawnCooldown   time.Duration            `yaml:"spawn_cooldown"`
	MaxActive       int                      `yaml:"max_active"`
	Size            float64                  `yaml:"size"`
	SpawnMargin     float64                  `yaml:"spawn_margin"`
	SpeedMultiplier float64                  `yaml:"speed_multiplier"`
	MagnetRadius    float64                  `yaml:"magnet_radius"`
	MagnetPull      float64                  `yaml:"magnet_pull"`
	SizeMultiplier  float64                  `yaml:"size_multiplier"`
	FreezeSlowdown  float64                  `yaml:"freeze_slowdown"`
}

// UltimateTuning configures the ultimate meter.
type UltimateTuning struct {
	ChargeMax    float64       `yaml:"charge_max"`
	ChargePerEat float64       `yaml:"charge_per_eat"`
	Duration     time.Duration `yaml:"duration"`
	AutoActivate bool          `yaml:"auto_activate"`
}

// BotTuning configures bot fish spawning and behavior.
type BotTuning struct {
	MaxTotal           int           `yaml:"max_total"`
	SpawnInterval      time.Duration `yaml:"spawn_interval"`
	BatchMin           int           `yaml:"batch_min"`
	BatchMax           int           `yaml:"batch_max"`
	SpeedMin           int           `yaml:"speed_min"`
	SpeedMax           int           `yaml:"speed_max"`
	SizeJitter         float64       `yaml:"size_jitter"`
	ThreatZone         float64       `yaml:"threat_zone"`
	ChaseRangeFactor   float64       `yaml:"chase_range_factor"`
	ChaseStep          float64       `yaml:"chase_step"`
	FleeDistance       float64       `yaml:"flee_distance"`
	FleeStep           float64       `yaml:"flee_step"`
	FleeBoost          float64       `yaml:"flee_boost"`
	StalkStep          float64       `yaml:"stalk_step"`
	ZigzagStep         float64       `yaml:"zigzag_step"`
	ZigzagAmplitudeMin float64       `yaml:"zigzag_amplitude_min"`
	ZigzagAmplitudeMax float64       `yaml:"zigzag_amplitude_max"`
	AnimationMin       time.Duration `yaml:"animation_min"`
	AnimationMax       time.Duration `yaml:"animation_max"`
	EdgeMargin         float64       `yaml:"edge_margin"`
	DespawnMargin      float64       `yaml:"despawn_margin"`
}

// BossTrigger spawns one boss the first time the player reaches Level.
type BossTrigger struct {
	Level  int `yaml:"level"`
	Health int `yaml:"health"`
}

// BossTuning configures boss encounters.
type BossTuning struct {
	Triggers         []BossTrigger `yaml:"triggers"`
	LevelOffset      int           `yaml:"level_offset"`
	Speed            float64       `yaml:"speed"`
	SizeMultiplier   float64       `yaml:"size_multiplier"`
	PatternInterval  time.Duration `yaml:"pattern_interval"`
	HitGuard         time.Duration `yaml:"hit_guard"`
	RewardPerLevel   int           `yaml:"reward_per_level"`
	ChaseMultiplier  float64       `yaml:"chase_multiplier"`
	ChargeMultiplier float64       `yaml:"charge_multiplier"`
	SweepMultiplier  float64       `yaml:"sweep_multiplier"`
	SweepAmplitude   float64       `yaml:"sweep_amplitude"`
	SweepStep        float64       `yaml:"sweep_step"`
}

// Contact damage policies.
const (
	ContactDamageEdge = "edge"
	ContactDamageTick = "tick"
)

// CollisionTuning selects the contact damage policy.
type CollisionTuning struct {
	ContactDamage string `yaml:"contact_damage"`
}

// TrackingTuning is the raw face-metric window mapped onto the screen.
type TrackingTuning struct {
	XMin               float64 `yaml:"x_min"`
	XMax               float64 `yaml:"x_max"`
	YMin               float64 `yaml:"y_min"`
	YMax               float64 `yaml:"y_max"`
	MouthOpenThreshold float64 `yaml:"mouth_open_threshold"`
}

// NotificationTuning controls on-screen message lifetime.
type NotificationTuning struct {
	Duration time.Duration `yaml:"duration"`
	Fade     time.Duration `yaml:"fade"`
}

// DerivedTuning holds values computed from the loaded tables.
type DerivedTuning struct {
	// LevelThresholds[i] is the cumulative score that leaves level Start+i.
	LevelThresholds []int
	TotalScoreToWin int
}

// DefaultTuning returns the embedded defaults. It panics only if the
// embedded file itself is broken, which tests guard against.
func DefaultTuning() *Tuning {
	t, err := LoadTuning("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded tuning: %v", err))
	}
	return t
}

// LoadTuning loads tuning from a YAML file, merged over the embedded defaults.
// If path is empty, only embedded defaults are used.
func LoadTuning(path string) (*Tuning, error) {
	t := &Tuning{}
	if err := yaml.Unmarshal(defaultsYAML, t); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading tuning file: %w", err)
		}
		if err := yaml.Unmarshal(data, t); err != nil {
			return nil, fmt.Errorf("parsing tuning file %s: %w", path, err)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.computeDerived()
	return t, nil
}

// Validate rejects tables the core cannot run with.
func (t *Tuning) Validate() error {
	var errs []error
	lv := t.Levels

	if t.Screen.Width <= 0 || t.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen: size must be positive, got %vx%v", t.Screen.Width, t.Screen.Height))
	}
	if lv.Start < 1 || lv.Max <= lv.Start {
		errs = append(errs, fmt.Errorf("levels: need 1 <= start < max, got start=%d max=%d", lv.Start, lv.Max))
	}
	if want := lv.Max - lv.Start; len(lv.ScoreToLevelUp) != want {
		errs = append(errs, fmt.Errorf("levels: score_to_level_up needs %d entries, got %d", want, len(lv.ScoreToLevelUp)))
	}
	for lvl := 1; lvl <= lv.Max; lvl++ {
		if lv.BaseSizes[lvl] <= 0 {
			errs = append(errs, fmt.Errorf("levels: missing base size for level %d", lvl))
		}
	}
	if len(t.Combo.Tiers) == 0 {
		errs = append(errs, errors.New("combo: at least one tier required"))
	}
	if t.Bots.BatchMin < 1 || t.Bots.BatchMax < t.Bots.BatchMin {
		errs = append(errs, fmt.Errorf("bots: bad batch range %d..%d", t.Bots.BatchMin, t.Bots.BatchMax))
	}
	if t.Bots.SpeedMax < t.Bots.SpeedMin {
		errs = append(errs, fmt.Errorf("bots: bad speed range %d..%d", t.Bots.SpeedMin, t.Bots.SpeedMax))
	}
	if t.Bots.AnimationMax < t.Bots.AnimationMin {
		errs = append(errs, errors.New("bots: animation_max below animation_min"))
	}
	if t.Ultimate.ChargeMax <= 0 {
		errs = append(errs, errors.New("ultimate: charge_max must be positive"))
	}
	switch t.Collision.ContactDamage {
	case ContactDamageEdge, ContactDamageTick:
	default:
		errs = append(errs, fmt.Errorf("collision: unknown contact_damage %q", t.Collision.ContactDamage))
	}
	tr := t.Tracking
	if tr.XMax <= tr.XMin || tr.YMax <= tr.YMin {
		errs = append(errs, errors.New("tracking: window max must exceed min"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid tuning: %w", errors.Join(errs...))
	}
	return nil
}

// computeDerived calculates values that depend on the loaded tables.
func (t *Tuning) computeDerived() {
	sort.Slice(t.Combo.Tiers, func(i, j int) bool {
		return t.Combo.Tiers[i].Min > t.Combo.Tiers[j].Min
	})
	sort.Slice(t.Boss.Triggers, func(i, j int) bool {
		return t.Boss.Triggers[i].Level < t.Boss.Triggers[j].Level
	})

	thresholds := make([]int, len(t.Levels.ScoreToLevelUp))
	total := 0
	for i, delta := range t.Levels.ScoreToLevelUp {
		total += delta
		thresholds[i] = total
	}
	t.Derived = DerivedTuning{
		LevelThresholds: thresholds,
		TotalScoreToWin: total,
	}
}

// Clone returns a deep copy so a reload never races a running session.
func (t *Tuning) Clone() *Tuning {
	c := *t
	c.Levels.ScoreToLevelUp = append([]int(nil), t.Levels.ScoreToLevelUp...)
	c.Levels.BaseSizes = make(map[int]float64, len(t.Levels.BaseSizes))
	for k, v := range t.Levels.BaseSizes {
		c.Levels.BaseSizes[k] = v
	}
	c.Combo.Tiers = append([]ComboTier(nil), t.Combo.Tiers...)
	c.Combo.Milestones = append([]int(nil), t.Combo.Milestones...)
	c.PowerUps.Durations = make(map[string]time.Duration, len(t.PowerUps.Durations))
	for k, v := range t.PowerUps.Durations {
		c.PowerUps.Durations[k] = v
	}
	c.Boss.Triggers = append([]BossTrigger(nil), t.Boss.Triggers...)
	c.Derived.LevelThresholds = append([]int(nil), t.Derived.LevelThresholds...)
	return &c
}

// WriteYAML writes the tuning to a YAML file.
func (t *Tuning) WriteYAML(path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling tuning: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing tuning file: %w", err)
	}
	return nil
}
