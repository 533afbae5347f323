package menu

import (
	"encoding/json"
	"time"
)

// PlaceholderImage is used when an item is saved without an image URL.
const PlaceholderImage = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=400&h=300&fit=crop"

// MenuItem is a single entry on the menu.
type MenuItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
	Featured    bool    `json:"featured"`
}

// Category is a menu section. The set is small and rarely changes;
// it is bundled with every snapshot so the data is self-describing.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Snapshot is the complete menu state at a point in time.
// Version strictly increases on every committed write; two snapshots
// with the same version carry identical content.
type Snapshot struct {
	LastUpdated time.Time  `json:"lastUpdated"`
	Version     int64      `json:"version"`
	Categories  []Category `json:"categories"`
	Items       []MenuItem `json:"items"`
}

// snapshotWire mirrors Snapshot on the wire, plus the legacy syncId
// field that older persisted documents used instead of version.
type snapshotWire struct {
	LastUpdated time.Time  `json:"lastUpdated"`
	Version     int64      `json:"version"`
	SyncID      int64      `json:"syncId,omitempty"`
	Categories  []Category `json:"categories"`
	Items       []MenuItem `json:"items"`
}

// UnmarshalJSON accepts both the canonical version field and the
// legacy syncId written by earlier menu services.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var w snapshotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Version == 0 {
		w.Version = w.SyncID
	}
	s.LastUpdated = w.LastUpdated
	s.Version = w.Version
	s.Categories = w.Categories
	s.Items = w.Items
	return nil
}

// Clone returns a deep copy. Consumers receive clones and must not
// be able to mutate the store's authoritative snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		LastUpdated: s.LastUpdated,
		Version:     s.Version,
		Categories:  make([]Category, len(s.Categories)),
		Items:       make([]MenuItem, len(s.Items)),
	}
	copy(out.Categories, s.Categories)
	copy(out.Items, s.Items)
	return out
}

// Normalize repairs a loaded snapshot in place: missing images get the
// placeholder, and an item whose category is unknown is moved to the
// first real category rather than rejected.
func (s *Snapshot) Normalize() {
	if len(s.Categories) == 0 {
		s.Categories = DefaultCategories()
	}
	known := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		known[c.ID] = true
	}
	fallback := fallbackCategory(s.Categories)
	for i := range s.Items {
		if s.Items[i].Image == "" {
			s.Items[i].Image = PlaceholderImage
		}
		if !known[s.Items[i].Category] {
			s.Items[i].Category = fallback
		}
	}
}

// fallbackCategory picks the first category that is not the "all"
// pseudo-section used by the menu filter UI.
func fallbackCategory(cats []Category) string {
	for _, c := range cats {
		if c.ID != "all" {
			return c.ID
		}
	}
	return "all"
}

// DefaultCategories returns the built-in menu sections.
func DefaultCategories() []Category {
	return []Category{
		{ID: "all", Name: "All Items", Icon: "🍽️"},
		{ID: "breakfast", Name: "Breakfast", Icon: "🌅"},
		{ID: "lunch", Name: "Lunch", Icon: "🌞"},
		{ID: "dinner", Name: "Dinner", Icon: "🌙"},
		{ID: "drinks", Name: "Drinks", Icon: "🥤"},
		{ID: "desserts", Name: "Desserts", Icon: "🍰"},
	}
}

// DefaultSnapshot returns the built-in starter catalog used when no
// durable snapshot exists yet, or when every backend fails to load.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		LastUpdated: time.Now().UTC(),
		Version:     1,
		Categories:  DefaultCategories(),
		Items: []MenuItem{
			{
				ID:          1,
				Name:        "Golden Pancakes",
				Description: "Fluffy pancakes with maple syrup and fresh berries",
				Price:       12.99,
				Category:    "breakfast",
				Image:       "https://images.unsplash.com/photo-1567620905732-2d1ec7ab7445?w=400&h=300&fit=crop",
				Featured:    true,
			},
			{
				ID:          2,
				Name:        "Gourmet Burger",
				Description: "Wagyu beef patty with truffle aioli, arugula, and aged cheddar",
				Price:       18.99,
				Category:    "lunch",
				Image:       "https://images.unsplash.com/photo-1568901346375-23c9450c58cd?w=400&h=300&fit=crop",
				Featured:    true,
			},
			{
				ID:          3,
				Name:        "Grilled Salmon",
				Description: "Atlantic salmon with lemon herb butter and seasonal vegetables",
				Price:       28.99,
				Category:    "dinner",
				Image:       "https://images.unsplash.com/photo-1467003909585-2f8a72700288?w=400&h=300&fit=crop",
				Featured:    true,
			},
		},
	}
}
