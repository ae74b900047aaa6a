package model

import (
	"time"
)

// AccountModel 账户余额（创建者收款账户、平台手续费账户）
type AccountModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Address string `json:"address" gorm:"not null;uniqueIndex"`
	Balance int64  `json:"balance" gorm:"default:0"`
}

// TableName 自定义表名
func (AccountModel) TableName() string {
	return "account"
}
