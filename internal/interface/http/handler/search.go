package handler

import (
	"github.com/gin-gonic/gin"

	appsearch "github.com/xiebiao/inventoryhub/internal/application/search"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/search"
	"github.com/xiebiao/inventoryhub/pkg/response"
)

// SearchHandler 搜索HTTP处理器
type SearchHandler struct {
	searchUseCase *appsearch.UseCase
	indexer       *search.Indexer
}

// NewSearchHandler 创建搜索处理器
func NewSearchHandler(searchUseCase *appsearch.UseCase, indexer *search.Indexer) *SearchHandler {
	return &SearchHandler{searchUseCase: searchUseCase, indexer: indexer}
}

// Search 聚合搜索
// @Summary      聚合搜索(清单+物品并发查询)
// @Description  关键词至少2个字符;索引未就绪返回503而非空结果
// @Tags         搜索
// @Param        q query string true "关键词"
// @Param        page query int false "页码"
// @Param        size query int false "每页总配额(两类结果平分,向上取整)"
// @Param        sort query string false "排序(newest/oldest/title/items)"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "关键词过短"
// @Failure      503 {object} response.Response "搜索服务不可用"
// @Router       /api/v1/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	result, err := h.searchUseCase.Execute(c.Request.Context(), appsearch.Request{
		Query:  c.Query("q"),
		Page:   queryInt(c, "page", 1),
		Size:   queryInt(c, "size", 20),
		SortBy: c.Query("sort"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// IndexStatus 查询索引适配器状态
// @Summary      索引状态
// @Tags         搜索
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/search/index [get]
func (h *SearchHandler) IndexStatus(c *gin.Context) {
	response.Success(c, gin.H{
		"state": h.indexer.State().String(),
		"ready": h.indexer.Ready(),
	})
}

// ReinitializeIndex 重新初始化索引适配器
// 降级是粘性的:只有这里的显式重试才会重新探活
// @Summary      重新初始化索引(管理员)
// @Tags         搜索
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/search/index/reinitialize [post]
func (h *SearchHandler) ReinitializeIndex(c *gin.Context) {
	state := h.indexer.Reinitialize(c.Request.Context())
	response.Success(c, gin.H{
		"state": state.String(),
		"ready": state == search.StateReady,
	})
}
