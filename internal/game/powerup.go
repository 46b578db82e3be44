package game

import (
	"math"
	"time"
)

// PowerUpKind is the closed set of collectible buffs.
type PowerUpKind uint8

const (
	PowerUpSpeed PowerUpKind = iota
	PowerUpShield
	PowerUpMagnet
	PowerUpDoubleXP
	PowerUpFreeze
	PowerUpSizeBoost

	powerUpKindCount
)

// AllPowerUpKinds lists every kind in declaration order.
var AllPowerUpKinds = []PowerUpKind{
	PowerUpSpeed, PowerUpShield, PowerUpMagnet, PowerUpDoubleXP, PowerUpFreeze, PowerUpSizeBoost,
}

var powerUpNames = [powerUpKindCount]string{
	PowerUpSpeed:     "speed",
	PowerUpShield:    "shield",
	PowerUpMagnet:    "magnet",
	PowerUpDoubleXP:  "double_xp",
	PowerUpFreeze:    "freeze",
	PowerUpSizeBoost: "size_boost",
}

// String returns the tuning/wire name of the kind.
func (k PowerUpKind) String() string {
	if k < powerUpKindCount {
		return powerUpNames[k]
	}
	return "unknown"
}

// Label is the on-screen pickup text.
func (k PowerUpKind) Label() string {
	switch k {
	case PowerUpSpeed:
		return "SPEED BOOST!"
	case PowerUpShield:
		return "SHIELD!"
	case PowerUpMagnet:
		return "MAGNET!"
	case PowerUpDoubleXP:
		return "DOUBLE XP!"
	case PowerUpFreeze:
		return "FREEZE!"
	case PowerUpSizeBoost:
		return "SIZE BOOST!"
	}
	return "POWER UP!"
}

// Color is the pickup tint as a hex string.
func (k PowerUpKind) Color() string {
	switch k {
	case PowerUpSpeed:
		return "#ffff00"
	case PowerUpShield:
		return "#00ffff"
	case PowerUpMagnet:
		return "#ff00ff"
	case PowerUpDoubleXP:
		return "#00ff00"
	case PowerUpFreeze:
		return "#96c8ff"
	case PowerUpSizeBoost:
		return "#ffa500"
	}
	return "#ffffff"
}

// MarshalText encodes the kind by name in JSON payloads.
func (k PowerUpKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// PowerUp is a collectible floating on the playfield.
type PowerUp struct {
	ID        uint64
	Kind      PowerUpKind
	X, Y      float64
	Size      float64
	SpawnedAt time.Time
	ExpiresAt time.Time

	bobPhase float64
	Bob      float64 // Cosmetic vertical offset, collisions ignore it
}

// NewPowerUp creates a power-up that despawns after lifetime.
func NewPowerUp(id uint64, kind PowerUpKind, x, y, size float64, now time.Time, lifetime time.Duration, phase float64) *PowerUp {
	return &PowerUp{
		ID:        id,
		Kind:      kind,
		X:         x,
		Y:         y,
		Size:      size,
		SpawnedAt: now,
		ExpiresAt: now.Add(lifetime),
		bobPhase:  phase,
	}
}

// Update advances the bob animation and reports whether the power-up is still alive.
func (p *PowerUp) Update(now time.Time) bool {
	if !now.Before(p.ExpiresAt) {
		return false
	}
	age := now.Sub(p.SpawnedAt).Seconds()
	p.Bob = math.Sin(age*3+p.bobPhase) * 5
	return true
}

// Rect returns the pickup region.
func (p *PowerUp) Rect() Rect {
	return RectAround(p.X, p.Y, p.Size)
}
