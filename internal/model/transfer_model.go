package model

import (
	"time"
)

// TransferRecordModel 资金划转记录
type TransferRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ProjectId      int64        `json:"project_id" gorm:"not null;index"`
	MilestoneIndex *int         `json:"milestone_index"` // 里程碑释放时记录，手续费划转为空
	Kind           TransferKind `json:"kind" gorm:"not null"`
	ToAddress      string       `json:"to_address" gorm:"not null"`
	Amount         int64        `json:"amount" gorm:"not null"`
	OpId           string       `json:"op_id" gorm:"not null;index"`
}

// TransferKind 划转类型
type TransferKind string

const (
	TransferKindFee     TransferKind = "fee"     // 贡献手续费 -> 平台账户
	TransferKindRelease TransferKind = "release" // 里程碑释放 -> 创建者账户
)

// TableName 自定义表名
func (TransferRecordModel) TableName() string {
	return "transfer_record"
}
