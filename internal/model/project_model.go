package model

import (
	"time"
)

// ProjectModel 众筹项目模型
type ProjectModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title     string `json:"title" gorm:"not null" binding:"required"`
	RewardURI string `json:"reward_uri"` // 奖励元数据URI（IPFS）

	// 众筹信息（单位: wei）
	TargetAmount  int64 `json:"target_amount" gorm:"not null" binding:"required,min=1"`
	CurrentAmount int64 `json:"current_amount" gorm:"default:0"`
	EscrowBalance int64 `json:"escrow_balance" gorm:"default:0"` // 托管余额 = 累计净贡献 - 已释放金额
	FullyFunded   bool  `json:"fully_funded" gorm:"default:false"`

	// 创建者信息
	CreatorAddress string `json:"creator_address" gorm:"not null;index"`

	// 关联
	Milestones []MilestoneModel `json:"milestones,omitempty" gorm:"foreignKey:ProjectId"`
}

// TableName 自定义表名
func (ProjectModel) TableName() string {
	return "project"
}
