package model

import (
	"time"
)

// ChainEventModel 链上事件镜像记录
type ChainEventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventType string `json:"event_type" gorm:"not null"`
	TxHash    string `json:"tx_hash" gorm:"not null;uniqueIndex:idx_chain_event,priority:1"`
	LogIndex  uint   `json:"log_index" gorm:"uniqueIndex:idx_chain_event,priority:2"`
	BlockNum  uint64 `json:"block_num" gorm:"not null"`
	Data      string `json:"data" gorm:"type:text"`
	Processed bool   `json:"processed" gorm:"default:false"`
}

// TableName 自定义表名
func (ChainEventModel) TableName() string {
	return "chain_event"
}
