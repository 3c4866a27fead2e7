package game

import "math/rand/v2"

// Tile is one face of the board. Two tiles share every symbol.
type Tile struct {
	ID       int    `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Matched  bool   `json:"matched"`
}

type icon struct {
	symbol, name, category string
}

// deck is the pool of symbols a board draws from.
var deck = []icon{
	{"🍜", "ramen", "food"}, {"🍱", "bento", "food"},
	{"🍕", "pizza", "food"}, {"🍔", "burger", "food"},
	{"🥗", "salad", "food"}, {"☕", "coffee", "food"},
	{"👗", "dress", "fashion"}, {"👠", "heels", "fashion"},
	{"🧥", "coat", "fashion"}, {"🧣", "scarf", "fashion"},
	{"👜", "handbag", "fashion"}, {"🎩", "top hat", "fashion"},
	{"🛒", "cart", "shopping"}, {"💳", "card", "shopping"},
	{"🏪", "store", "shopping"}, {"📦", "parcel", "shopping"},
	{"🎁", "gift", "shopping"}, {"💰", "money bag", "shopping"},
	{"🏠", "home", "services"}, {"🚗", "car", "services"},
	{"💼", "briefcase", "services"}, {"📱", "phone", "services"},
	{"💡", "bulb", "services"}, {"⭐", "star", "services"},
}

// DeckSize is the number of distinct symbols available.
var DeckSize = len(deck)

// NewBoard draws pairs distinct symbols and returns a shuffled board with two
// tiles per symbol. Tile ids are 0..2*pairs-1. pairs is clamped into
// 1..DeckSize.
func NewBoard(pairs int, rng *rand.Rand) []Tile {
	pairs = max(1, min(pairs, len(deck)))

	picks := rng.Perm(len(deck))[:pairs]
	tiles := make([]Tile, 0, pairs*2)
	for i, p := range picks {
		ic := deck[p]
		for j := 0; j < 2; j++ {
			tiles = append(tiles, Tile{
				ID:       i*2 + j,
				Symbol:   ic.symbol,
				Name:     ic.name,
				Category: ic.category,
			})
		}
	}
	rng.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	return tiles
}
