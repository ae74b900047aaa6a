package handler

import (
	"github.com/fundlab/mfs/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Creator          string                       `json:"creator" binding:"required"`
	Title            string                       `json:"title" binding:"required"`
	TargetAmount     int64                        `json:"target_amount" binding:"required"`
	MilestoneNames   [model.MilestoneCount]string `json:"milestone_names" binding:"required"`
	MilestoneAmounts [model.MilestoneCount]int64  `json:"milestone_amounts" binding:"required"`
	RewardURI        string                       `json:"reward_uri"`
}

// SupportProjectRequest 支持项目请求
type SupportProjectRequest struct {
	Supporter string `json:"supporter" binding:"required"`
	Amount    int64  `json:"amount" binding:"required"`
}

// ReleaseMilestoneRequest 释放里程碑请求
type ReleaseMilestoneRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// ProposeCompletionRequest 提交完成证明请求
type ProposeCompletionRequest struct {
	Caller   string `json:"caller" binding:"required"`
	ProofURI string `json:"proof_uri" binding:"required"`
}

// VoteRequest 投票请求
type VoteRequest struct {
	Voter string `json:"voter" binding:"required"`
	Agree *bool  `json:"agree" binding:"required"`
}

// OpResponse 写操作响应
type OpResponse struct {
	OpId string `json:"op_id"`
}

// ProjectStatsResponse 项目统计响应
type ProjectStatsResponse struct {
	ProjectId        int64  `json:"project_id"`
	TargetAmount     int64  `json:"target_amount"`
	CurrentAmount    int64  `json:"current_amount"`
	FundedPercentage string `json:"funded_percentage"`
	FullyFunded      bool   `json:"fully_funded"`
	SupporterCount   int64  `json:"supporter_count"`
	EscrowBalance    int64  `json:"escrow_balance"`
}
