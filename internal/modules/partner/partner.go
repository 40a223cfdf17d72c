package partner

import "time"

// Role is the tag stored on a partner profile.
type Role string

const (
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// Partner is a restaurant account that owns a menu. Its ID is the identity uid.
type Partner struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	ShopName  *string   `db:"shop_name" json:"shop_name,omitempty"`
	Location  *string   `db:"location" json:"location,omitempty"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PublicProfile is what the public menu page may see of a partner.
type PublicProfile struct {
	ID       string  `json:"id"`
	ShopName *string `json:"shop_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Location *string `json:"location,omitempty"`
}

func (p *Partner) Public() PublicProfile {
	return PublicProfile{ID: p.ID, ShopName: p.ShopName, Phone: p.Phone, Location: p.Location}
}

// CreatePartnerRequest is the payload for provisioning a partner account.
type CreatePartnerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
	ShopName *string `json:"shop_name,omitempty"`
	Location *string `json:"location,omitempty"`
}
