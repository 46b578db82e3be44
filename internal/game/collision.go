package game

import (
	"strconv"
	"time"

	"feeding-frenzy/internal/config"
)

// resolveCollisions applies every player interaction for this tick: bots,
// then the boss, then power-ups. Resolution stops as soon as the session ends.
func (e *Engine) resolveCollisions(now time.Time) {
	e.resolveBots(now)
	if e.status.Terminal() {
		return
	}
	e.resolveBoss(now)
	if e.status.Terminal() {
		return
	}
	e.resolvePowerUps(now)
}

// contactDamage reports whether an overlap may deal damage this tick.
// Under the edge policy a continuous contact deals at most one hit; hit
// records whether it already has.
func (e *Engine) contactDamage(hit bool) bool {
	if e.tuning.Collision.ContactDamage == config.ContactDamageTick {
		return true
	}
	return !hit
}

func (e *Engine) resolveBots(now time.Time) {
	p := e.player
	pr := p.Rect()
	clear(e.nextContacts)

	alive := e.bots[:0]
	for _, bot := range e.bots {
		if e.status.Terminal() || !pr.Overlaps(bot.Rect()) {
			alive = append(alive, bot)
			continue
		}

		ultimate := p.UltimateActive()
		if p.IsEating && (p.Level > bot.Level || ultimate) {
			e.eatBot(bot, now)
			continue
		}
		alive = append(alive, bot)

		// Equal or lower level fish are harmless to touch.
		if p.Level >= bot.Level || ultimate {
			continue
		}
		hit := e.contacts[bot.ID]
		if e.contactDamage(hit) {
			damaged, _ := e.damagePlayer("bot", bot.Level, now)
			hit = hit || damaged
		}
		if hit {
			e.nextContacts[bot.ID] = true
		}
	}
	clear(e.bots[len(alive):])
	e.bots = alive
	e.contacts, e.nextContacts = e.nextContacts, e.contacts
}

// eatBot awards the fish to the player. Score is added before the combo
// grows, so the multiplier reflects the streak prior to this eat.
func (e *Engine) eatBot(bot *BotFish, now time.Time) {
	p := e.player
	level := p.Level

	awarded, levels := p.AddScore(bot.Level)
	combo := p.AddCombo(now)
	ready := p.ChargeUltimate(e.tuning.Ultimate.ChargePerEat)
	p.FishEaten++
	delete(e.contacts, bot.ID)

	e.emit(EventTypeFishEaten, now, FishEatenPayload{BotID: bot.ID, Level: bot.Level, Points: awarded, Combo: combo})
	e.cue(CueEat)

	for i := 1; i <= levels; i++ {
		e.levelUp(level+i, now)
	}

	for _, m := range e.tuning.Combo.Milestones {
		if combo == m {
			e.emit(EventTypeCombo, now, ComboPayload{Count: combo, Multiplier: p.ScoreMultiplier()})
			e.cue(comboCue(m))
			e.notify(now, comboText(m), "#ffa500", m >= 10)
			break
		}
	}

	if ready {
		e.emit(EventTypeUltimateReady, now, nil)
		e.cue(CueUltimateReady)
		e.notify(now, "ULTIMATE READY!", "#ff00ff", false)
	}
}

// damagePlayer applies one hit from source and ends the session if it was fatal.
func (e *Engine) damagePlayer(source string, level int, now time.Time) (damaged, fatal bool) {
	p := e.player
	damaged, fatal = p.TakeDamage(now)
	if !damaged {
		return false, false
	}
	e.emit(EventTypePlayerHit, now, PlayerHitPayload{Source: source, Level: level, Health: p.Health})
	e.cue(CueHit)
	if fatal {
		e.endSession(StatusGameOver, now)
	}
	return damaged, fatal
}

func (e *Engine) resolveBoss(now time.Time) {
	b := e.boss
	if b == nil {
		return
	}
	p := e.player
	if !p.Rect().Overlaps(b.Rect()) {
		e.bossContact = false
		return
	}

	if p.IsEating && p.UltimateActive() {
		if !b.TakeDamage(now) {
			return
		}
		if !b.Defeated {
			e.emit(EventTypeBossHit, now, e.bossPayload(0))
			e.cue(CueBossHit)
			return
		}
		e.defeatBoss(now)
		return
	}

	if p.Invincible() || !e.contactDamage(e.bossContact) {
		return
	}
	if damaged, _ := e.damagePlayer("boss", b.Level, now); damaged {
		e.bossContact = true
	}
}

func (e *Engine) defeatBoss(now time.Time) {
	p := e.player
	reward := e.boss.Reward()
	e.emit(EventTypeBossDefeated, now, e.bossPayload(reward))
	e.cue(CueBossDefeated)
	e.boss = nil
	e.bossContact = false
	p.BossesDefeated++

	level := p.Level
	awarded, levels := p.AddScore(reward)
	e.notify(now, "BOSS DEFEATED! +"+strconv.Itoa(awarded), "#ffd700", true)
	for i := 1; i <= levels; i++ {
		e.levelUp(level+i, now)
	}
}

// resolvePowerUps consumes every overlapping pickup regardless of eating.
func (e *Engine) resolvePowerUps(now time.Time) {
	pr := e.player.Rect()
	alive := e.powerUps[:0]
	for _, pu := range e.powerUps {
		if !pr.Overlaps(pu.Rect()) {
			alive = append(alive, pu)
			continue
		}
		e.player.ActivatePowerUp(pu.Kind, now)
		e.emit(EventTypePowerUpCollected, now, PowerUpPayload{Kind: pu.Kind})
		e.cue(CuePowerUpCollect)
		e.notify(now, pu.Kind.Label(), pu.Kind.Color(), false)
	}
	clear(e.powerUps[len(alive):])
	e.powerUps = alive
}
