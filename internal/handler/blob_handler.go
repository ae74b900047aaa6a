package handler

import (
	"io"
	"net/http"

	"github.com/fundlab/mfs/internal/blobstore"
	"github.com/gin-gonic/gin"
)

// 单个证明文件上限 10MB
const maxBlobSize = 10 << 20

type BlobHandler struct {
	store blobstore.Store
}

func NewBlobHandler(store blobstore.Store) *BlobHandler {
	return &BlobHandler{store: store}
}

// Upload 上传证明图片或奖励元数据，返回不透明URI
func (h *BlobHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "缺少文件")
		return
	}
	defer file.Close()

	if header.Size > maxBlobSize {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ARGUMENT", "文件过大")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBlobSize))
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "INTERNAL", "读取文件失败")
		return
	}

	uri, err := h.store.Store(c.Request.Context(), header.Filename, data)
	if err != nil {
		ErrorResponse(c, http.StatusBadGateway, "BLOB_STORE", "上传存储失败")
		return
	}

	SuccessResponse(c, http.StatusOK, "上传成功", gin.H{"uri": uri})
}
