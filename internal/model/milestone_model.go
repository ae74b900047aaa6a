package model

import (
	"time"
)

// MilestoneCount 每个项目固定的里程碑数量
const MilestoneCount = 3

// MilestoneModel 项目里程碑
type MilestoneModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId int64  `json:"project_id" gorm:"not null;uniqueIndex:idx_project_milestone,priority:1"`
	Index     int    `json:"index" gorm:"column:idx;not null;uniqueIndex:idx_project_milestone,priority:2"`
	Name      string `json:"name" gorm:"not null"`
	Amount    int64  `json:"amount" gorm:"not null"` // 托管金额（wei）

	// 状态（released/completed 只会 false -> true）
	Released  bool            `json:"released" gorm:"default:false"`
	Completed bool            `json:"completed" gorm:"default:false"`
	Status    MilestoneStatus `json:"status" gorm:"default:'pending'"`

	// 当前投票周期
	ProofURI      string     `json:"proof_uri"`
	Cycle         int        `json:"cycle" gorm:"default:0"` // 每次提交证明递增
	AgreeCount    int64      `json:"agree_count" gorm:"default:0"`
	DisagreeCount int64      `json:"disagree_count" gorm:"default:0"`
	TotalVotes    int64      `json:"total_votes" gorm:"default:0"`
	VoteDeadline  *time.Time `json:"vote_deadline"`
	Finalized     bool       `json:"finalized" gorm:"default:false"`
}

// MilestoneStatus 里程碑状态
type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "pending"   // 无进行中的提案
	MilestoneStatusProposed  MilestoneStatus = "proposed"  // 证明已提交，投票进行中
	MilestoneStatusCompleted MilestoneStatus = "completed" // 投票通过，终态
)

// TableName 自定义表名
func (MilestoneModel) TableName() string {
	return "milestone"
}
