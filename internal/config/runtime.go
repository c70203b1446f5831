package config

import (
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/bbodi/rustarok-sub001/internal/world/attrs"
)

// JobAttributes is one job's base attribute table, expressed the way
// config-runtime.toml encodes it (whole-number percentages).
type JobAttributes struct {
	MaxHP           int32 `mapstructure:"max_hp"`
	AttackDamage    int32 `mapstructure:"attack_damage"`
	WalkingSpeedPct int32 `mapstructure:"walking_speed_pct"`
	AttackRangePct  int32 `mapstructure:"attack_range_pct"`
	AttackSpeedPct  int32 `mapstructure:"attack_speed_pct"`
	ArmorPct        int32 `mapstructure:"armor_pct"`
	HealingPct      int32 `mapstructure:"healing_pct"`
	HpRegenPct      int32 `mapstructure:"hp_regen_pct"`
	ManaRegenPct    int32 `mapstructure:"mana_regen_pct"`
}

// ToBase converts the toml-friendly whole-percent table into the fixed-point
// attrs.BaseAttributes the simulation actually computes with.
func (j JobAttributes) ToBase() attrs.BaseAttributes {
	return attrs.BaseAttributes{
		MaxHP:           j.MaxHP,
		AttackDamage:    j.AttackDamage,
		WalkingSpeedPct: attrs.Pct(j.WalkingSpeedPct),
		AttackRangePct:  attrs.Pct(j.AttackRangePct),
		AttackSpeedPct:  attrs.Pct(j.AttackSpeedPct),
		ArmorPct:        attrs.Pct(j.ArmorPct),
		HealingPct:      attrs.Pct(j.HealingPct),
		HpRegenPct:      attrs.Pct(j.HpRegenPct),
		ManaRegenPct:    attrs.Pct(j.ManaRegenPct),
	}
}

// BalanceConfig is the hot-reloadable table covering per-job base
// attributes, attack-cooldown and hit-stun tick counts, and per-tick status
// damage/heal amounts (§3.2).
type BalanceConfig struct {
	Jobs map[string]JobAttributes `mapstructure:"jobs"`

	AttackCooldownTicks uint64 `mapstructure:"attack_cooldown_ticks"`
	HitStunTicks        uint64 `mapstructure:"hit_stun_ticks"`

	PoisonDamagePerTick  float32 `mapstructure:"poison_damage_per_tick"`
	BurningDamagePerTick float32 `mapstructure:"burning_damage_per_tick"`
	BleedDamagePerTick   float32 `mapstructure:"bleed_damage_per_tick"`
	HealOverTimePerTick  float32 `mapstructure:"heal_over_time_per_tick"`
}

// JobOrDefault returns job's table, falling back to a "knight" baseline
// (1000 HP, 50 damage, 0% armor, 100% for the other percentages) if the
// runtime config never configured it.
func (b BalanceConfig) JobOrDefault(job string) JobAttributes {
	if j, ok := b.Jobs[job]; ok {
		return j
	}
	return JobAttributes{
		MaxHP: 1000, AttackDamage: 50,
		WalkingSpeedPct: 100, AttackRangePct: 100, AttackSpeedPct: 100,
		ArmorPct: 0, HealingPct: 100, HpRegenPct: 100, ManaRegenPct: 100,
	}
}

// RuntimeConfig watches config-runtime.toml and exposes its latest parse
// as an atomically-swapped pointer, grounded on niceyeti-tabular's use of
// viper for server configuration, extended here with WatchConfig/
// OnConfigChange so a live simulation picks up balance edits without a
// restart (§3.2).
type RuntimeConfig struct {
	v       *viper.Viper
	current atomic.Pointer[BalanceConfig]
}

// NewRuntimeConfig loads path once, then watches it for changes. onChange,
// if non-nil, runs after every successful reload.
func NewRuntimeConfig(path string, onChange func(*BalanceConfig)) (*RuntimeConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	rc := &RuntimeConfig{v: v}
	if err := rc.reload(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := rc.reload(); err == nil && onChange != nil {
			onChange(rc.Get())
		}
	})
	v.WatchConfig()

	return rc, nil
}

func (rc *RuntimeConfig) reload() error {
	var cfg BalanceConfig
	if err := rc.v.Unmarshal(&cfg); err != nil {
		return err
	}
	rc.current.Store(&cfg)
	return nil
}

// Get returns the most recently loaded BalanceConfig.
func (rc *RuntimeConfig) Get() *BalanceConfig {
	return rc.current.Load()
}
