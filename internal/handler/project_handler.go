package handler

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fundlab/mfs/internal/logic"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProjectHandler struct {
	projectLogic    *logic.ProjectLogic
	contributeLogic *logic.ContributeLogic
}

func NewProjectHandler(engine *logic.Engine) *ProjectHandler {
	return &ProjectHandler{
		projectLogic:    logic.NewProjectLogic(engine),
		contributeLogic: logic.NewContributeLogic(engine),
	}
}

// CreateProject 创建项目
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	if !common.IsHexAddress(req.Creator) {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的创建者地址")
		return
	}

	project, opId, err := h.projectLogic.CreateProject(req.Creator, req.Title,
		req.TargetAmount, req.MilestoneNames, req.MilestoneAmounts, req.RewardURI)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "项目创建成功", gin.H{
		"op_id":   opId,
		"project": project,
	})
}

// GetProjects 获取项目列表
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	creator := c.Query("creator")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	projects, total, err := h.projectLogic.GetProjects(creator, page, pageSize)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"projects":  projects,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetProject 获取单个项目详情
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的项目ID")
		return
	}

	project, err := h.projectLogic.GetProject(id)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{"project": project})
}

// GetProjectCount 获取项目总数
func (h *ProjectHandler) GetProjectCount(c *gin.Context) {
	count, err := h.projectLogic.GetProjectCount()
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{"count": count})
}

// GetProjectReward 获取项目奖励元数据URI
func (h *ProjectHandler) GetProjectReward(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的项目ID")
		return
	}

	uri, err := h.projectLogic.GetRewardURI(id)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{"reward_uri": uri})
}

// GetProjectStats 获取项目统计信息
func (h *ProjectHandler) GetProjectStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的项目ID")
		return
	}

	project, err := h.projectLogic.GetProject(id)
	if err != nil {
		FailWith(c, err)
		return
	}

	supporterCount, err := h.contributeLogic.CountSupporters(id)
	if err != nil {
		FailWith(c, err)
		return
	}

	// 达标百分比，展示用
	percentage := decimal.Zero
	if project.TargetAmount > 0 {
		percentage = decimal.NewFromInt(project.CurrentAmount).
			Div(decimal.NewFromInt(project.TargetAmount)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	SuccessResponse(c, http.StatusOK, "", ProjectStatsResponse{
		ProjectId:        project.Id,
		TargetAmount:     project.TargetAmount,
		CurrentAmount:    project.CurrentAmount,
		FundedPercentage: percentage.String(),
		FullyFunded:      project.FullyFunded,
		SupporterCount:   supporterCount,
		EscrowBalance:    project.EscrowBalance,
	})
}
