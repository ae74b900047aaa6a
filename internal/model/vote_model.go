package model

import (
	"time"
)

// VoteModel 投票回执，防止同一周期内重复投票。
// 周期号参与唯一键，投票失败重置后支持者可以再次投票。
type VoteModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ProjectId      int64  `json:"project_id" gorm:"not null;uniqueIndex:idx_vote_receipt,priority:1"`
	MilestoneIndex int    `json:"milestone_index" gorm:"not null;uniqueIndex:idx_vote_receipt,priority:2"`
	Cycle          int    `json:"cycle" gorm:"not null;uniqueIndex:idx_vote_receipt,priority:3"`
	Address        string `json:"address" gorm:"not null;uniqueIndex:idx_vote_receipt,priority:4"`
	Agree          bool   `json:"agree" gorm:"not null"`
}

// TableName 自定义表名
func (VoteModel) TableName() string {
	return "vote"
}
