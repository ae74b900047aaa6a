package handler

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fundlab/mfs/internal/logic"
	"github.com/gin-gonic/gin"
)

type ContributeHandler struct {
	contributeLogic *logic.ContributeLogic
}

func NewContributeHandler(engine *logic.Engine) *ContributeHandler {
	return &ContributeHandler{
		contributeLogic: logic.NewContributeLogic(engine),
	}
}

// SupportProject 支持项目
func (h *ContributeHandler) SupportProject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的项目ID")
		return
	}

	var req SupportProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	if !common.IsHexAddress(req.Supporter) {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的支持者地址")
		return
	}

	opId, err := h.contributeLogic.SupportProject(id, req.Supporter, req.Amount)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "贡献成功", OpResponse{OpId: opId})
}

// GetContribution 查询支持者累计贡献
func (h *ContributeHandler) GetContribution(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的项目ID")
		return
	}

	address := c.Param("address")
	if !common.IsHexAddress(address) {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的地址")
		return
	}

	amount, err := h.contributeLogic.GetContribution(id, address)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"project_id": id,
		"address":    address,
		"amount":     amount,
	})
}

// IsSupporter 查询是否为项目支持者
func (h *ContributeHandler) IsSupporter(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的项目ID")
		return
	}

	address := c.Param("address")
	if !common.IsHexAddress(address) {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的地址")
		return
	}

	isSupporter, err := h.contributeLogic.IsSupporter(id, address)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"project_id":   id,
		"address":      address,
		"is_supporter": isSupporter,
	})
}

// GetAccountContributions 查询某地址支持过的所有项目
func (h *ContributeHandler) GetAccountContributions(c *gin.Context) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "无效的地址")
		return
	}

	contributions, err := h.contributeLogic.GetSupporterContributions(address)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"address":       address,
		"contributions": contributions,
	})
}
