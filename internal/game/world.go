package game

import (
	"log"
	"time"
)

// updateBots spawns the due batch, moves every bot and drops the ones that
// swam off screen.
func (e *Engine) updateBots(now time.Time) {
	for n := e.spawner.BotBatch(now, len(e.bots)); n > 0; n-- {
		e.bots = append(e.bots, e.spawner.NewBot(e.nextEntityID(), e.player.Level, now))
	}

	pl := e.target()
	alive := e.bots[:0]
	for _, bot := range e.bots {
		if bot.Update(pl, now) {
			alive = append(alive, bot)
			continue
		}
		delete(e.contacts, bot.ID)
	}
	clear(e.bots[len(alive):])
	e.bots = alive
}

// updateBoss moves the boss. Freeze does not slow it.
func (e *Engine) updateBoss(now time.Time) {
	if e.boss == nil {
		return
	}
	pl := e.target()
	pl.Frozen = false
	e.boss.Update(pl, now)
}

// updatePowerUps despawns expired pickups and rolls for a new one.
func (e *Engine) updatePowerUps(now time.Time) {
	alive := e.powerUps[:0]
	for _, pu := range e.powerUps {
		if pu.Update(now) {
			alive = append(alive, pu)
		}
	}
	clear(e.powerUps[len(alive):])
	e.powerUps = alive

	if pu := e.spawner.PowerUp(e.nextEntityID(), now, len(e.powerUps)); pu != nil {
		pu.Update(now)
		e.powerUps = append(e.powerUps, pu)
	}
}

// applyMagnet drags edible bots and pickups toward the player.
func (e *Engine) applyMagnet() {
	p := e.player
	if p.MagnetRadius <= 0 {
		return
	}
	pull := e.tuning.PowerUps.MagnetPull
	for _, bot := range e.bots {
		if bot.Level < p.Level && p.InMagnetRange(bot.X, bot.Y) {
			bot.X, bot.Y = stepToward(bot.X, bot.Y, p.X, p.Y, pull)
		}
	}
	for _, pu := range e.powerUps {
		if p.InMagnetRange(pu.X, pu.Y) {
			pu.X, pu.Y = stepToward(pu.X, pu.Y, p.X, p.Y, pull)
		}
	}
}

// spawnBoss brings in the boss for a trigger the player just crossed.
func (e *Engine) spawnBoss(now time.Time) {
	trigger, ok := e.spawner.BossTrigger(e.player.Level, e.boss != nil)
	if !ok {
		return
	}
	e.boss = NewBossFish(trigger, e.tuning, e.rng, now)
	e.bossContact = false
	e.emit(EventTypeBossSpawned, now, e.bossPayload(0))
	e.notify(now, "BOSS INCOMING!", "#ff3030", true)
	log.Printf("👑 Boss spawned: tier %d, level %d, health %d", trigger.Level, e.boss.Level, e.boss.Health)
}

func (e *Engine) bossPayload(reward int) BossPayload {
	b := e.boss
	return BossPayload{Tier: b.Tier, Level: b.Level, Health: b.Health, MaxHealth: b.MaxHealth, Reward: reward}
}
