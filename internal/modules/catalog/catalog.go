package catalog

import "time"

// Category groups items on a partner's menu. Items refer to it by name.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	PartnerID string    `db:"partner_id" json:"partnerId"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Item is a single dish on a partner's menu.
type Item struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Price       float64   `db:"price" json:"price"`
	Description *string   `db:"description" json:"description,omitempty"`
	Category    string    `db:"category" json:"category"`
	Image       *string   `db:"image" json:"image,omitempty"`
	MustTry     bool      `db:"must_try" json:"mustTry"`
	PartnerID   string    `db:"partner_id" json:"partnerId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// ItemInput carries the writable fields of an item. Nil fields are left
// unchanged on update.
type ItemInput struct {
	ID          string   `json:"id,omitempty"`
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Image       *string  `json:"image,omitempty"`
	MustTry     *bool    `json:"mustTry,omitempty"`
}

// ItemFilter narrows a partner's item list.
type ItemFilter struct {
	MustTry bool
	Query   string
}
