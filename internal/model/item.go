package model

import "time"

// Item is a collectible catalog entry bought through the coin draw.
type Item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// UserItem records that a user owns (and last equipped) an item.
type UserItem struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	ItemID     int       `json:"item_id"`
	EquippedAt time.Time `json:"equipped_at"`
}

// DrawCost is the coin price of one item draw.
const DrawCost = 50
