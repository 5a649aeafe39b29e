package domain

import "time"

// MerchantSettings holds a shop's Stryve credentials and mode flags.
type MerchantSettings struct {
	Shop      string    `gorm:"type:varchar(255);primaryKey" json:"shop"`
	APIKey    string    `gorm:"type:text;not null" json:"-"`
	BaseURL   string    `gorm:"type:text;not null;default:''" json:"base_url"`
	Sandbox   bool      `gorm:"not null" json:"sandbox"`
	Debug     bool      `gorm:"not null;default:false" json:"debug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MerchantSettings) TableName() string { return "stryve_settings" }

// Configured reports whether Stryve calls can be made for the shop.
func (s *MerchantSettings) Configured() bool {
	return s != nil && s.APIKey != ""
}
