package game

import "time"

// Notification is a transient on-screen message.
type Notification struct {
	Text      string
	Color     string
	Large     bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Alpha returns 0..1 opacity at now, fading over the final fade window.
func (n *Notification) Alpha(now time.Time, fade time.Duration) float64 {
	left := n.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	if fade <= 0 || left >= fade {
		return 1
	}
	return float64(left) / float64(fade)
}

// notifications is a capped FIFO; the oldest message is dropped when full.
type notifications struct {
	items []Notification
	limit int
}

func newNotifications(limit int) *notifications {
	return &notifications{items: make([]Notification, 0, limit), limit: limit}
}

func (ns *notifications) push(n Notification) {
	if ns.limit <= 0 {
		return
	}
	if len(ns.items) >= ns.limit {
		copy(ns.items, ns.items[1:])
		ns.items = ns.items[:len(ns.items)-1]
	}
	ns.items = append(ns.items, n)
}

// expire removes finished notifications in place.
func (ns *notifications) expire(now time.Time) {
	n := 0
	for _, item := range ns.items {
		if now.Before(item.ExpiresAt) {
			ns.items[n] = item
			n++
		}
	}
	ns.items = ns.items[:n]
}

func (ns *notifications) clear() {
	ns.items = ns.items[:0]
}
