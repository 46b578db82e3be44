package main

import (
	"fmt"
	"math"

	"feeding-frenzy/internal/game"
	"feeding-frenzy/internal/render"

	"github.com/gdamore/tcell/v2"
)

// hudRows are reserved at the top of the terminal.
const hudRows = 1

// view maps world coordinates onto terminal cells.
type view struct {
	worldW, worldH float64
	cols, rows     int
}

func (v view) fieldRows() int {
	if v.rows <= hudRows {
		return 1
	}
	return v.rows - hudRows
}

// toCell converts a world position to a terminal cell.
func (v view) toCell(x, y float64) (int, int) {
	cx := int(x / v.worldW * float64(v.cols))
	cy := int(y/v.worldH*float64(v.fieldRows())) + hudRows
	return clampInt(cx, 0, v.cols-1), clampInt(cy, hudRows, v.rows-1)
}

// toWorld converts a terminal cell to the world position at its centre.
func (v view) toWorld(cx, cy int) (float64, float64) {
	x := (float64(cx) + 0.5) / float64(v.cols) * v.worldW
	y := (float64(cy-hudRows) + 0.5) / float64(v.fieldRows()) * v.worldH
	return math.Max(0, math.Min(x, v.worldW)), math.Max(0, math.Min(y, v.worldH))
}

// cellSpan is how many columns an entity of size covers.
func (v view) cellSpan(size float64) int {
	n := int(math.Round(size / v.worldW * float64(v.cols)))
	if n < 1 {
		return 1
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func levelStyle(level int) tcell.Style {
	c := render.LevelColor(level)
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

// drawFish paints a horizontal run of cells facing dir.
func drawFish(s tcell.Screen, v view, x, y, size, dir float64, style tcell.Style) {
	cx, cy := v.toCell(x, y)
	span := v.cellSpan(size)
	head, body := '>', '='
	if dir < 0 {
		head = '<'
	}
	start := cx - span/2
	for i := 0; i < span; i++ {
		col := start + i
		if col < 0 || col >= v.cols {
			continue
		}
		r := body
		if (dir >= 0 && i == span-1) || (dir < 0 && i == 0) {
			r = head
		}
		s.SetContent(col, cy, r, nil, style)
	}
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// drawSnapshot paints one frame of the game.
func drawSnapshot(s tcell.Screen, snap *game.GameSnapshot) {
	s.Clear()
	cols, rows := s.Size()
	if cols <= 0 || rows <= 0 || snap.Width <= 0 || snap.Height <= 0 {
		s.Show()
		return
	}
	v := view{worldW: snap.Width, worldH: snap.Height, cols: cols, rows: rows}

	for _, pu := range snap.PowerUps {
		cx, cy := v.toCell(pu.X, pu.Y+pu.Bob)
		style := tcell.StyleDefault.Foreground(tcell.GetColor(pu.Kind.Color())).Bold(true)
		s.SetContent(cx, cy, '*', nil, style)
	}

	for _, b := range snap.Bots {
		drawFish(s, v, b.X, b.Y, b.Size, b.Direction, levelStyle(b.Level))
	}

	if snap.HasBoss {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
		if snap.Boss.Guarded {
			style = style.Reverse(true)
		}
		drawFish(s, v, snap.Boss.X, snap.Boss.Y, snap.Boss.Size, snap.Boss.Direction, style)
	}

	p := snap.Player
	style := levelStyle(p.Level).Bold(true)
	if p.Invincible || p.UltimateActive {
		style = style.Blink(true)
	}
	if p.IsEating {
		style = style.Reverse(true)
	}
	drawFish(s, v, p.X, p.Y, p.Size, 1, style)

	hud := fmt.Sprintf(" %s  score %d/%d  level %d  hp %d/%d  combo x%d  ult %3.0f%%",
		snap.Status, p.Score, snap.ScoreToWin, p.Level, p.Health, p.MaxHealth, p.ComboCount, p.UltimateCharge*100)
	if p.UltimateReady {
		hud += "  [U] ready"
	}
	drawText(s, 0, 0, hud, tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy))

	for i, n := range snap.Notifications {
		row := rows/2 + i
		if row >= rows {
			break
		}
		x := (cols - len(n.Text)) / 2
		drawText(s, max(x, 0), row, n.Text, tcell.StyleDefault.Foreground(tcell.GetColor(n.Color)).Bold(n.Large))
	}

	if snap.Status.Terminal() {
		msg := "GAME OVER - press R to play again"
		if snap.Status == game.StatusVictory {
			msg = "VICTORY - press R to play again"
		}
		drawText(s, max((cols-len(msg))/2, 0), rows-1, msg, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
	}

	s.Show()
}
