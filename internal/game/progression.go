package game

import (
	"log"
	"strconv"
	"time"
)

// checkProgression evaluates the win condition, then boss triggers.
func (e *Engine) checkProgression(now time.Time) {
	p := e.player
	if p.Score >= e.tuning.Derived.TotalScoreToWin {
		p.Level = e.tuning.Levels.Max
		e.endSession(StatusVictory, now)
		return
	}
	e.spawnBoss(now)
}

// levelUp announces that the player reached level.
func (e *Engine) levelUp(level int, now time.Time) {
	p := e.player
	e.emit(EventTypeLevelUp, now, LevelUpPayload{Level: level, Score: p.Score, Size: p.CurrentSize})
	e.cue(CueLevelUp)
	e.notify(now, "LEVEL UP! Lv."+strconv.Itoa(level), "#ffd700", true)
}

// endSession moves to a terminal status once and queues the summary for sinks.
func (e *Engine) endSession(status GameStatus, now time.Time) {
	if e.sessionDone {
		return
	}
	e.status = status
	e.sessionDone = true

	outcome, evType, cue, text, color := OutcomeGameOver, EventTypeGameOver, CueGameOver, "GAME OVER", "#ff3030"
	if status == StatusVictory {
		outcome, evType, cue, text, color = OutcomeVictory, EventTypeVictory, CueVictory, "VICTORY!", "#00ff88"
	}

	summary := e.summary(outcome, now)
	e.finished = append(e.finished, summary)
	e.emit(evType, now, SessionPayload{
		Outcome:   outcome,
		Score:     summary.Score,
		Level:     summary.Level,
		FishEaten: summary.FishEaten,
		MaxCombo:  summary.MaxCombo,
	})
	e.cue(cue)
	e.notify(now, text, color, true)

	if status == StatusVictory {
		log.Printf("🏆 Victory! score=%d fish=%d maxCombo=%d", summary.Score, summary.FishEaten, summary.MaxCombo)
	} else {
		log.Printf("💀 Game over: score=%d level=%d fish=%d", summary.Score, summary.Level, summary.FishEaten)
	}
}

func (e *Engine) summary(outcome string, now time.Time) SessionSummary {
	p := e.player
	return SessionSummary{
		Outcome:        outcome,
		Score:          p.Score,
		FishEaten:      p.FishEaten,
		Level:          p.Level,
		MaxCombo:       p.MaxCombo,
		BossesDefeated: p.BossesDefeated,
		StartedAt:      e.sessionStart,
		EndedAt:        now,
	}
}

// applyUltimateRequest fires a pending or automatic ultimate activation.
func (e *Engine) applyUltimateRequest(now time.Time) {
	requested := e.ultimateRequested || (e.tuning.Ultimate.AutoActivate && e.player.UltimateReady())
	e.ultimateRequested = false
	if !requested || !e.player.ActivateUltimate(now) {
		return
	}
	e.emit(EventTypeUltimateActivated, now, nil)
	e.cue(CueUltimateActivate)
	e.notify(now, "ULTIMATE!", "#ff00ff", true)
}

// emit records an event for this tick, dropping it once the per-tick cap is hit.
func (e *Engine) emit(t EventType, now time.Time, payload interface{}) {
	if len(e.events) >= e.limits.MaxEvents {
		return
	}
	ev := NewEvent(t, e.tickNum, now, payload)
	e.eventSeq++
	ev.Sequence = e.eventSeq
	e.events = append(e.events, ev)
}

func (e *Engine) cue(c Cue) {
	e.cues = append(e.cues, c)
}

func (e *Engine) notify(now time.Time, text, color string, large bool) {
	e.notes.push(Notification{
		Text:      text,
		Color:     color,
		Large:     large,
		CreatedAt: now,
		ExpiresAt: now.Add(e.tuning.Notifications.Duration),
	})
}

func comboCue(milestone int) Cue {
	return Cue("combo_" + strconv.Itoa(milestone))
}

func comboText(milestone int) string {
	return "COMBO x" + strconv.Itoa(milestone) + "!"
}

// produceSnapshot copies this tick's state into the next pool slot.
func (e *Engine) produceSnapshot(now time.Time) {
	snap := e.snapshotPool.AcquireWrite()
	p := e.player

	snap.TickNum = e.tickNum
	snap.Timestamp = now
	snap.Status = e.status
	snap.Width = e.tuning.Screen.Width
	snap.Height = e.tuning.Screen.Height
	snap.ScoreToWin = e.tuning.Derived.TotalScoreToWin

	snap.Player = PlayerSnapshot{
		X:               p.X,
		Y:               p.Y,
		Size:            p.Size(),
		Level:           p.Level,
		Score:           p.Score,
		ScoreToNext:     p.ScoreToNext,
		IsEating:        p.IsEating,
		Health:          p.Health,
		MaxHealth:       p.MaxHealth,
		Invincible:      p.Invincible(),
		InvincibleMs:    remainingMs(p.InvincibleUntil(), now),
		SpeedMultiplier: p.SpeedMultiplier,
		MagnetRadius:    p.MagnetRadius,
		DoubleXP:        p.DoubleXP,
		FreezeEnemies:   p.FreezeEnemies,
		SizeMultiplier:  p.SizeMultiplier,
		UltimateCharge:  p.UltimateCharge,
		UltimateReady:   p.UltimateReady(),
		UltimateActive:  p.UltimateActive(),
		UltimateMs:      remainingMs(p.UltimateUntil(), now),
		ComboCount:      p.ComboCount,
		ComboMs:         remainingMs(p.ComboExpiry(), now),
		MaxCombo:        p.MaxCombo,
		FishEaten:       p.FishEaten,
		BossesDefeated:  p.BossesDefeated,
		PowerUps:        snap.Player.PowerUps[:0],
	}
	for _, kind := range AllPowerUpKinds {
		if p.PowerUpActive(kind) {
			snap.Player.PowerUps = append(snap.Player.PowerUps, ActivePowerUpSnapshot{
				Kind:        kind,
				RemainingMs: p.PowerUpRemaining(kind, now).Milliseconds(),
			})
		}
	}

	for _, b := range e.bots {
		snap.Bots = append(snap.Bots, BotSnapshot{
			ID:        b.ID,
			Level:     b.Level,
			X:         b.X,
			Y:         b.Y,
			Size:      b.Size,
			Direction: b.Direction,
			Behavior:  b.Behavior,
			MouthOpen: b.MouthOpen,
		})
	}

	if b := e.boss; b != nil {
		snap.HasBoss = true
		snap.Boss = BossSnapshot{
			Tier:      b.Tier,
			Level:     b.Level,
			X:         b.X,
			Y:         b.Y,
			Size:      b.Size,
			Direction: b.Direction,
			Health:    b.Health,
			MaxHealth: b.MaxHealth,
			Pattern:   b.Pattern,
			Guarded:   b.Guarded(now),
		}
	}

	for _, pu := range e.powerUps {
		snap.PowerUps = append(snap.PowerUps, PowerUpSnapshot{
			ID:          pu.ID,
			Kind:        pu.Kind,
			X:           pu.X,
			Y:           pu.Y,
			Bob:         pu.Bob,
			Size:        pu.Size,
			RemainingMs: remainingMs(pu.ExpiresAt, now),
		})
	}

	fade := e.tuning.Notifications.Fade
	for i := range e.notes.items {
		n := &e.notes.items[i]
		snap.Notifications = append(snap.Notifications, NotificationSnapshot{
			Text:  n.Text,
			Color: n.Color,
			Large: n.Large,
			Alpha: n.Alpha(now, fade),
		})
	}

	snap.Events = append(snap.Events, e.events...)

	e.snapshotPool.PublishWrite()
}

func remainingMs(until, now time.Time) int64 {
	if until.IsZero() || !now.Before(until) {
		return 0
	}
	return until.Sub(now).Milliseconds()
}
