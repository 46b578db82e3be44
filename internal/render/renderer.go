// Package render draws game snapshots into raster frames with gg.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"math"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"feeding-frenzy/internal/game"
)

// Renderer draws snapshots onto a reused canvas. Render calls are serialized.
type Renderer struct {
	mu     sync.Mutex
	width  int
	height int
	dc     *gg.Context
	assets game.AssetProvider

	fontSmall font.Face
	fontLarge font.Face
}

// NewRenderer creates a renderer for a width x height frame. assets may be
// nil, in which case fish are drawn as placeholders.
func NewRenderer(width, height int, assets game.AssetProvider) *Renderer {
	if assets == nil {
		assets = game.NoopAssets{}
	}
	r := &Renderer{
		width:  width,
		height: height,
		dc:     gg.NewContext(width, height),
		assets: assets,
	}
	r.loadFonts()
	return r
}

// loadFonts parses a system TTF once; without one, gg's built-in face is used.
func (r *Renderer) loadFonts() {
	path := fontPath()
	if path == "" {
		log.Println("⚠️ No font found, HUD uses the built-in face")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("⚠️ Failed to read font file: %v", err)
		return
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		log.Printf("⚠️ Failed to parse font: %v", err)
		return
	}
	small, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: 20, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Printf("⚠️ Failed to create font face: %v", err)
		return
	}
	large, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: 44, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Printf("⚠️ Failed to create font face: %v", err)
		return
	}
	r.fontSmall, r.fontLarge = small, large
}

func fontPath() string {
	if p := os.Getenv("FONT_PATH"); p != "" {
		return p
	}
	for _, p := range []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
		"C:\\Windows\\Fonts\\arial.ttf",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Render draws snap and returns a copy of the frame.
func (r *Renderer) Render(snap *game.GameSnapshot) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	src := r.dc.Image().(*image.RGBA)
	out := image.NewRGBA(src.Rect)
	copy(out.Pix, src.Pix)
	return out
}

// EncodePNG draws snap and writes it to w as PNG.
func (r *Renderer) EncodePNG(w io.Writer, snap *game.GameSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	if err := r.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	return nil
}

func (r *Renderer) draw(snap *game.GameSnapshot) {
	dc := r.dc
	dc.Identity()
	sx := float64(r.width) / nonZero(snap.Width, float64(r.width))
	sy := float64(r.height) / nonZero(snap.Height, float64(r.height))

	r.drawBackground(dc)

	dc.Push()
	dc.Scale(sx, sy)
	for i := range snap.PowerUps {
		r.drawPowerUp(dc, &snap.PowerUps[i])
	}
	for i := range snap.Bots {
		b := &snap.Bots[i]
		r.drawFish(dc, b.X, b.Y, b.Size, b.Level, b.MouthOpen, b.Direction < 0)
		if b.Behavior == game.BehaviorChase && b.Level > snap.Player.Level {
			dc.SetColor(color.RGBA{255, 60, 60, 90})
			dc.SetLineWidth(2)
			dc.DrawCircle(b.X, b.Y, b.Size*0.6)
			dc.Stroke()
		}
	}
	if snap.HasBoss {
		r.drawBoss(dc, &snap.Boss)
	}
	r.drawPlayer(dc, &snap.Player)
	dc.Pop()

	r.drawHUD(dc, snap)
	r.drawNotifications(dc, snap.Notifications)

	switch snap.Status {
	case game.StatusGameOver:
		r.drawOverlay(dc, "GAME OVER", fmt.Sprintf("Score %d  ·  press R", snap.Player.Score), color.RGBA{255, 48, 48, 255})
	case game.StatusVictory:
		r.drawOverlay(dc, "VICTORY!", fmt.Sprintf("Score %d  ·  press R", snap.Player.Score), color.RGBA{0, 255, 136, 255})
	}
}

func (r *Renderer) drawBackground(dc *gg.Context) {
	grad := gg.NewLinearGradient(0, 0, 0, float64(r.height))
	grad.AddColorStop(0, color.RGBA{20, 90, 150, 255})
	grad.AddColorStop(1, color.RGBA{6, 20, 48, 255})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()
}

// drawFish scales the level sprite so its width equals size.
func (r *Renderer) drawFish(dc *gg.Context, x, y, size float64, level int, mouthOpen, facingLeft bool) {
	img := r.assets.FishSprite(level, mouthOpen)
	if img == nil {
		img = Placeholder(level, mouthOpen)
	}
	w := float64(img.Bounds().Dx())
	if w == 0 {
		return
	}
	k := size / w

	dc.Push()
	dc.Translate(x, y)
	if facingLeft {
		dc.Scale(-k, k)
	} else {
		dc.Scale(k, k)
	}
	dc.DrawImageAnchored(img, 0, 0, 0.5, 0.5)
	dc.Pop()
}

func (r *Renderer) drawPlayer(dc *gg.Context, p *game.PlayerSnapshot) {
	if p.Invincible {
		dc.SetColor(color.RGBA{120, 200, 255, 90})
		dc.DrawCircle(p.X, p.Y, p.Size*0.65)
		dc.Fill()
	}
	if p.MagnetRadius > 0 {
		dc.SetColor(color.RGBA{255, 255, 255, 40})
		dc.SetLineWidth(1)
		dc.DrawCircle(p.X, p.Y, p.MagnetRadius)
		dc.Stroke()
	}
	r.drawFish(dc, p.X, p.Y, p.Size, p.Level, p.IsEating, false)
	if p.UltimateActive {
		dc.SetColor(color.RGBA{255, 0, 255, 160})
		dc.SetLineWidth(4)
		dc.DrawCircle(p.X, p.Y, p.Size*0.7)
		dc.Stroke()
	}
}

func (r *Renderer) drawBoss(dc *gg.Context, b *game.BossSnapshot) {
	r.drawFish(dc, b.X, b.Y, b.Size, b.Level, true, b.Direction < 0)

	const barW, barH = 120.0, 10.0
	top := b.Y - b.Size/2 - 24
	dc.SetColor(color.RGBA{40, 40, 40, 220})
	dc.DrawRectangle(b.X-barW/2, top, barW, barH)
	dc.Fill()
	if b.MaxHealth > 0 {
		dc.SetColor(color.RGBA{255, 48, 48, 255})
		dc.DrawRectangle(b.X-barW/2, top, barW*float64(b.Health)/float64(b.MaxHealth), barH)
		dc.Fill()
	}
	if b.Guarded {
		dc.SetColor(color.RGBA{255, 255, 255, 120})
		dc.SetLineWidth(3)
		dc.DrawCircle(b.X, b.Y, b.Size*0.6)
		dc.Stroke()
	}
}

func (r *Renderer) drawPowerUp(dc *gg.Context, pu *game.PowerUpSnapshot) {
	y := pu.Y + pu.Bob
	c := parseHexColor(pu.Kind.Color(), 1)
	dc.SetColor(c)
	dc.DrawCircle(pu.X, y, pu.Size/2)
	dc.Fill()
	dc.SetColor(color.White)
	dc.SetLineWidth(2)
	dc.DrawCircle(pu.X, y, pu.Size/2)
	dc.Stroke()
	label := pu.Kind.Label()
	if label != "" {
		dc.DrawStringAnchored(label[:1], pu.X, y, 0.5, 0.35)
	}
}

func (r *Renderer) drawHUD(dc *gg.Context, snap *game.GameSnapshot) {
	p := &snap.Player
	if r.fontSmall != nil {
		dc.SetFontFace(r.fontSmall)
	}

	dc.SetColor(color.White)
	dc.DrawString(fmt.Sprintf("Score %d / %d", p.Score, snap.ScoreToWin), 20, 32)
	dc.DrawString(fmt.Sprintf("Level %d", p.Level), 20, 58)
	if p.ComboCount > 1 {
		dc.SetColor(color.RGBA{255, 165, 0, 255})
		dc.DrawString(fmt.Sprintf("Combo x%d", p.ComboCount), 20, 84)
	}

	// Health pips
	for i := 0; i < p.MaxHealth; i++ {
		if i < p.Health {
			dc.SetColor(color.RGBA{255, 70, 90, 255})
		} else {
			dc.SetColor(color.RGBA{80, 80, 80, 255})
		}
		dc.DrawCircle(float64(r.width)-30-float64(i)*28, 28, 10)
		dc.Fill()
	}

	// Ultimate meter
	const meterW, meterH = 200.0, 12.0
	mx := float64(r.width) - 20 - meterW
	dc.SetColor(color.RGBA{40, 40, 60, 220})
	dc.DrawRectangle(mx, 50, meterW, meterH)
	dc.Fill()
	fill := color.RGBA{160, 60, 255, 255}
	if p.UltimateReady {
		fill = color.RGBA{255, 0, 255, 255}
	}
	dc.SetColor(fill)
	dc.DrawRectangle(mx, 50, meterW*math.Min(p.UltimateCharge/100, 1), meterH)
	dc.Fill()

	// Level progress
	if p.ScoreToNext > 0 {
		dc.SetColor(color.RGBA{255, 215, 0, 200})
		dc.DrawRectangle(0, float64(r.height)-6, float64(r.width)*math.Min(float64(p.Score)/float64(p.ScoreToNext), 1), 6)
		dc.Fill()
	}
}

func (r *Renderer) drawNotifications(dc *gg.Context, notes []game.NotificationSnapshot) {
	y := float64(r.height) * 0.3
	for _, n := range notes {
		if n.Large && r.fontLarge != nil {
			dc.SetFontFace(r.fontLarge)
		} else if r.fontSmall != nil {
			dc.SetFontFace(r.fontSmall)
		}
		dc.SetColor(parseHexColor(n.Color, n.Alpha))
		dc.DrawStringAnchored(n.Text, float64(r.width)/2, y, 0.5, 0.5)
		if n.Large {
			y += 56
		} else {
			y += 32
		}
	}
}

func (r *Renderer) drawOverlay(dc *gg.Context, title, sub string, c color.Color) {
	dc.SetColor(color.RGBA{0, 0, 0, 160})
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()

	if r.fontLarge != nil {
		dc.SetFontFace(r.fontLarge)
	}
	dc.SetColor(c)
	dc.DrawStringAnchored(title, float64(r.width)/2, float64(r.height)/2-20, 0.5, 0.5)
	if r.fontSmall != nil {
		dc.SetFontFace(r.fontSmall)
	}
	dc.SetColor(color.White)
	dc.DrawStringAnchored(sub, float64(r.width)/2, float64(r.height)/2+30, 0.5, 0.5)
}

// parseHexColor reads #rrggbb with alpha in 0..1; anything else is white.
func parseHexColor(hex string, alpha float64) color.NRGBA {
	a := uint8(math.Round(math.Max(0, math.Min(alpha, 1)) * 255))
	if len(hex) != 7 || hex[0] != '#' {
		return color.NRGBA{255, 255, 255, a}
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{255, 255, 255, a}
	}
	return color.NRGBA{r, g, b, a}
}

func nonZero(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}
