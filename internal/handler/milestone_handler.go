package handler

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fundlab/mfs/internal/logic"
	"github.com/gin-gonic/gin"
)

type MilestoneHandler struct {
	milestoneLogic *logic.MilestoneLogic
	voteLogic      *logic.VoteLogic
}

func NewMilestoneHandler(engine *logic.Engine) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneLogic: logic.NewMilestoneLogic(engine),
		voteLogic:      logic.NewVoteLogic(engine),
	}
}

// parseMilestoneParams 解析路径中的项目ID和里程碑序号
func parseMilestoneParams(c *gin.Context) (int64, int, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的项目ID")
		return 0, 0, false
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的里程碑序号")
		return 0, 0, false
	}
	return id, index, true
}

// GetMilestone 获取里程碑详情
func (h *MilestoneHandler) GetMilestone(c *gin.Context) {
	id, index, ok := parseMilestoneParams(c)
	if !ok {
		return
	}

	milestone, err := h.milestoneLogic.GetMilestone(id, index)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{"milestone": milestone})
}

// ReleaseMilestone 释放里程碑资金
func (h *MilestoneHandler) ReleaseMilestone(c *gin.Context) {
	id, index, ok := parseMilestoneParams(c)
	if !ok {
		return
	}

	var req ReleaseMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	if !common.IsHexAddress(req.Caller) {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的调用者地址")
		return
	}

	opId, err := h.milestoneLogic.ReleaseMilestone(id, index, req.Caller)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "里程碑资金已释放", OpResponse{OpId: opId})
}

// ProposeCompletion 提交里程碑完成证明
func (h *MilestoneHandler) ProposeCompletion(c *gin.Context) {
	id, index, ok := parseMilestoneParams(c)
	if !ok {
		return
	}

	var req ProposeCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	if !common.IsHexAddress(req.Caller) {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的调用者地址")
		return
	}

	opId, err := h.milestoneLogic.ProposeMilestoneCompletion(id, index, req.Caller, req.ProofURI)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "完成证明已提交，投票开启", OpResponse{OpId: opId})
}

// Vote 对里程碑完成投票
func (h *MilestoneHandler) Vote(c *gin.Context) {
	id, index, ok := parseMilestoneParams(c)
	if !ok {
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	if !common.IsHexAddress(req.Voter) {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的投票者地址")
		return
	}

	opId, err := h.voteLogic.VoteMilestoneCompletion(id, index, req.Voter, *req.Agree)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "投票成功", OpResponse{OpId: opId})
}

// Finalize 结算投票周期
func (h *MilestoneHandler) Finalize(c *gin.Context) {
	id, index, ok := parseMilestoneParams(c)
	if !ok {
		return
	}

	opId, err := h.milestoneLogic.FinalizeMilestoneVote(id, index)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "投票已结算", OpResponse{OpId: opId})
}
