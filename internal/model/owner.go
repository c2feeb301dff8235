package model

import "time"

// ChannelOwner records that a user may write forecasts for a channel.
type ChannelOwner struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:ux_channel_owner,priority:1"`
	Channel   string    `json:"channel" gorm:"type:varchar(50);not null;uniqueIndex:ux_channel_owner,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the table name used by the planning database
func (ChannelOwner) TableName() string {
	return "sales_channels_users"
}
