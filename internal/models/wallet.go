package models

// Wallet maps a user to a receiving address on one network.
type Wallet struct {
	BaseModel
	UserID  string `gorm:"not null;index:idx_wallet_user_network,unique" json:"userId"`
	Network string `gorm:"type:varchar(64);not null;index:idx_wallet_user_network,unique" json:"network"`
	Address string `gorm:"type:varchar(255);not null" json:"address"`
}
