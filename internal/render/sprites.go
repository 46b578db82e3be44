package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // fish_<n>.png
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	_ "golang.org/x/image/webp" // fish_<n>.webp
)

// Placeholder sprite canvas; renderers scale it to the fish size.
const (
	spriteW = 128
	spriteH = 80
)

// SpriteSet implements game.AssetProvider from a directory of
// fish_<level>.png / fish_<level>_open.png (or .webp) images. Levels without a
// file get a drawn placeholder.
type SpriteSet struct {
	mu       sync.RWMutex
	dir      string
	maxLevel int
	closed   map[int]image.Image
	open     map[int]image.Image
	loaded   int
}

// NewSpriteSet creates an unloaded sprite set for levels 1..maxLevel.
func NewSpriteSet(dir string, maxLevel int) *SpriteSet {
	return &SpriteSet{
		dir:      dir,
		maxLevel: maxLevel,
		closed:   make(map[int]image.Image),
		open:     make(map[int]image.Image),
	}
}

// Load draws placeholders for every level, then overlays files from dir.
// A missing directory leaves the placeholders in place and is reported.
func (s *SpriteSet) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for lvl := 1; lvl <= s.maxLevel; lvl++ {
		s.closed[lvl] = Placeholder(lvl, false)
		s.open[lvl] = Placeholder(lvl, true)
	}
	s.loaded = 0

	if s.dir == "" {
		return nil
	}
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("sprites: %w", err)
	}

	for lvl := 1; lvl <= s.maxLevel; lvl++ {
		if img := s.loadFile(fmt.Sprintf("fish_%d", lvl)); img != nil {
			s.closed[lvl] = img
			s.open[lvl] = img
			s.loaded++
		}
		if img := s.loadFile(fmt.Sprintf("fish_%d_open", lvl)); img != nil {
			s.open[lvl] = img
			s.loaded++
		}
	}
	log.Printf("🐟 Sprites: %d files from %s, placeholders for the rest", s.loaded, s.dir)
	return nil
}

func (s *SpriteSet) loadFile(stem string) image.Image {
	for _, ext := range []string{".png", ".webp"} {
		path := filepath.Join(s.dir, stem+ext)
		img, err := decodeImage(path)
		if err == nil {
			return img
		}
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️ Sprite %s unusable: %v", path, err)
		}
	}
	return nil
}

func decodeImage(path string) (image.Image, error) {
	if filepath.Ext(path) == ".png" {
		return gg.LoadPNG(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// Teardown drops every sprite.
func (s *SpriteSet) Teardown() {
	s.mu.Lock()
	s.closed = make(map[int]image.Image)
	s.open = make(map[int]image.Image)
	s.loaded = 0
	s.mu.Unlock()
}

// FishSprite returns the sprite for level, nil if unloaded.
func (s *SpriteSet) FishSprite(level int, mouthOpen bool) image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if mouthOpen {
		return s.open[level]
	}
	return s.closed[level]
}

// Loaded reports how many sprite files came from disk.
func (s *SpriteSet) Loaded() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LevelColor gives each fish level a stable hue.
func LevelColor(level int) color.RGBA {
	h := math.Mod(float64(level)*47, 360)
	return hsv(h, 0.65, 0.95)
}

// Placeholder draws a fish facing right: body ellipse, tail, eye, and a
// mouth wedge when open.
func Placeholder(level int, mouthOpen bool) image.Image {
	dc := gg.NewContext(spriteW, spriteH)
	c := LevelColor(level)

	dc.SetColor(c)
	dc.MoveTo(22, spriteH/2)
	dc.LineTo(2, 10)
	dc.LineTo(2, spriteH-10)
	dc.ClosePath()
	dc.Fill()

	dc.DrawEllipse(70, spriteH/2, 50, 30)
	dc.Fill()

	if mouthOpen {
		dc.SetColor(color.RGBA{20, 10, 30, 255})
		dc.MoveTo(spriteW-8, spriteH/2-14)
		dc.LineTo(96, spriteH/2)
		dc.LineTo(spriteW-8, spriteH/2+14)
		dc.ClosePath()
		dc.Fill()
	}

	dc.SetColor(color.White)
	dc.DrawCircle(96, 30, 7)
	dc.Fill()
	dc.SetColor(color.Black)
	dc.DrawCircle(98, 30, 3.5)
	dc.Fill()

	return dc.Image()
}

func hsv(h, s, v float64) color.RGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.RGBA{uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255), 255}
}
