package model

import (
	"time"
)

// ContributionModel 累计贡献记录（扣除平台手续费后的净额）
type ContributionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId int64  `json:"project_id" gorm:"not null;uniqueIndex:idx_project_supporter,priority:1"`
	Address   string `json:"address" gorm:"not null;uniqueIndex:idx_project_supporter,priority:2;index"`
	Amount    int64  `json:"amount" gorm:"not null"` // 只增不减
}

// TableName 自定义表名
func (ContributionModel) TableName() string {
	return "contribution"
}
