package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/fogleman/gg"

	"feeding-frenzy/internal/game"
)

func baseSnapshot() *game.GameSnapshot {
	return &game.GameSnapshot{
		Width:      1280,
		Height:     720,
		ScoreToWin: 8340,
		Status:     game.StatusPlaying,
		Player: game.PlayerSnapshot{
			X: 640, Y: 360, Size: 60, Level: 2,
			Health: 3, MaxHealth: 3, ScoreToNext: 10,
		},
	}
}

func rgba(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func brightness(img image.Image) float64 {
	b := img.Bounds()
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y += 4 {
		for x := b.Min.X; x < b.Max.X; x += 4 {
			c := rgba(img, x, y)
			sum += float64(c.R) + float64(c.G) + float64(c.B)
		}
	}
	return sum
}

func TestRenderFrameSize(t *testing.T) {
	r := NewRenderer(320, 180, nil)
	img := r.Render(baseSnapshot())
	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 180 {
		t.Errorf("Expected 320x180, got %v", img.Bounds())
	}
}

func TestRenderDrawsPlayerOverBackground(t *testing.T) {
	r := NewRenderer(320, 180, nil)
	img := r.Render(baseSnapshot())

	player := rgba(img, 160, 90)
	background := rgba(img, 4, 90)
	if player == background {
		t.Errorf("Expected the player sprite at the center, got background colour %v", player)
	}
	if background.B <= background.R {
		t.Errorf("Expected a blue water background, got %v", background)
	}
}

func TestRenderReturnsIndependentFrames(t *testing.T) {
	r := NewRenderer(320, 180, nil)
	first := r.Render(baseSnapshot())
	before := rgba(first, 160, 90)

	moved := baseSnapshot()
	moved.Player.X = 100
	r.Render(moved)

	if rgba(first, 160, 90) != before {
		t.Error("Expected earlier frames to be unaffected by later renders")
	}
}

func TestRenderTerminalOverlayDarkens(t *testing.T) {
	r := NewRenderer(320, 180, nil)
	playing := brightness(r.Render(baseSnapshot()))

	over := baseSnapshot()
	over.Status = game.StatusGameOver
	ended := brightness(r.Render(over))

	if ended >= playing {
		t.Errorf("Expected the game-over overlay to darken the frame (%v >= %v)", ended, playing)
	}
}

func TestRenderWithEntities(t *testing.T) {
	snap := baseSnapshot()
	snap.Bots = []game.BotSnapshot{
		{ID: 1, Level: 1, X: 200, Y: 200, Size: 30, Direction: 1},
		{ID: 2, Level: 4, X: 900, Y: 500, Size: 55, Direction: -1, Behavior: game.BehaviorChase},
	}
	snap.HasBoss = true
	snap.Boss = game.BossSnapshot{Level: 7, X: 1000, Y: 200, Size: 90, Health: 3, MaxHealth: 5, Guarded: true}
	snap.PowerUps = []game.PowerUpSnapshot{{ID: 3, Kind: game.PowerUpShield, X: 300, Y: 600, Size: 30}}
	snap.Notifications = []game.NotificationSnapshot{{Text: "BOSS INCOMING!", Color: "#ff3030", Large: true, Alpha: 1}}

	var buf bytes.Buffer
	if err := NewRenderer(640, 360, nil).EncodePNG(&buf, snap); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Expected a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 640 {
		t.Errorf("Expected width 640, got %d", img.Bounds().Dx())
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex   string
		alpha float64
		want  color.NRGBA
	}{
		{"#ff3030", 1, color.NRGBA{255, 48, 48, 255}},
		{"#00ff88", 0.5, color.NRGBA{0, 255, 136, 128}},
		{"#ffd700", 0, color.NRGBA{255, 215, 0, 0}},
		{"ffd700", 1, color.NRGBA{255, 255, 255, 255}},
		{"#zzzzzz", 1, color.NRGBA{255, 255, 255, 255}},
		{"#123456", 2, color.NRGBA{0x12, 0x34, 0x56, 255}},
	}
	for _, tt := range tests {
		if got := parseHexColor(tt.hex, tt.alpha); got != tt.want {
			t.Errorf("parseHexColor(%q, %v): expected %v, got %v", tt.hex, tt.alpha, tt.want, got)
		}
	}
}

func TestSpriteSetPlaceholders(t *testing.T) {
	s := NewSpriteSet("", 15)
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for lvl := 1; lvl <= 15; lvl++ {
		if s.FishSprite(lvl, false) == nil || s.FishSprite(lvl, true) == nil {
			t.Fatalf("Expected placeholders for level %d", lvl)
		}
	}
	if s.FishSprite(16, false) != nil {
		t.Error("Expected no sprite past the max level")
	}
	if s.Loaded() != 0 {
		t.Errorf("Expected no files loaded, got %d", s.Loaded())
	}
}

func TestSpriteSetLoadsFiles(t *testing.T) {
	dir := t.TempDir()
	dc := gg.NewContext(16, 8)
	dc.SetRGB(1, 0, 0)
	dc.Clear()
	if err := dc.SavePNG(filepath.Join(dir, "fish_3.png")); err != nil {
		t.Fatal(err)
	}

	s := NewSpriteSet(dir, 5)
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Loaded() != 1 {
		t.Errorf("Expected 1 file loaded, got %d", s.Loaded())
	}
	img := s.FishSprite(3, true)
	if img == nil || img.Bounds().Dx() != 16 {
		t.Fatalf("Expected the 16px file sprite for both mouth states, got %v", img)
	}
	if s.FishSprite(2, false).Bounds().Dx() != spriteW {
		t.Error("Expected placeholders for levels without files")
	}

	s.Teardown()
	if s.FishSprite(3, false) != nil {
		t.Error("Expected Teardown to drop sprites")
	}
}

func TestSpriteSetMissingDir(t *testing.T) {
	s := NewSpriteSet(filepath.Join(t.TempDir(), "nope"), 3)
	if err := s.Load(); err == nil {
		t.Error("Expected an error for a missing directory")
	}
	if s.FishSprite(1, false) == nil {
		t.Error("Expected placeholders even when the directory is missing")
	}
}

func TestPlaceholderMouth(t *testing.T) {
	closed := Placeholder(4, false)
	open := Placeholder(4, true)
	if rgba(closed, spriteW-12, spriteH/2) == rgba(open, spriteW-12, spriteH/2) {
		t.Error("Expected the open mouth to change the sprite")
	}
}
