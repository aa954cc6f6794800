package handler

import (
	"github.com/gin-gonic/gin"

	appinv "github.com/xiebiao/inventoryhub/internal/application/inventory"
	"github.com/xiebiao/inventoryhub/internal/interface/http/dto"
	"github.com/xiebiao/inventoryhub/internal/interface/http/middleware"
	"github.com/xiebiao/inventoryhub/pkg/response"
)

// ItemHandler 物品HTTP处理器
type ItemHandler struct {
	createUseCase *appinv.CreateItemUseCase
	updateUseCase *appinv.UpdateItemUseCase
	deleteUseCase *appinv.DeleteItemUseCase
	listUseCase   *appinv.ListItemsUseCase
	getUseCase    *appinv.GetItemUseCase
	likeUseCase   *appinv.ToggleLikeUseCase
}

// NewItemHandler 创建物品处理器
func NewItemHandler(
	createUseCase *appinv.CreateItemUseCase,
	updateUseCase *appinv.UpdateItemUseCase,
	deleteUseCase *appinv.DeleteItemUseCase,
	listUseCase *appinv.ListItemsUseCase,
	getUseCase *appinv.GetItemUseCase,
	likeUseCase *appinv.ToggleLikeUseCase,
) *ItemHandler {
	return &ItemHandler{
		createUseCase: createUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
		listUseCase:   listUseCase,
		getUseCase:    getUseCase,
		likeUseCase:   likeUseCase,
	}
}

// Create 创建物品
// @Summary      创建物品
// @Description  custom_id省略时按清单的ID模板生成并消费序号;携带时跳过模板,不消费序号
// @Tags         物品
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "清单ID"
// @Param        request body dto.CreateItemRequest true "物品信息"
// @Success      201 {object} response.Response
// @Failure      409 {object} response.Response "自定义ID重复"
// @Router       /api/v1/inventories/{id}/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	inventoryID := paramID(c, "id")
	if inventoryID == 0 {
		response.ErrorWithCode(c, 42200, "清单ID非法")
		return
	}

	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 42201, "参数错误: "+err.Error())
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), appinv.CreateItemRequest{
		InventoryID: inventoryID,
		Actor:       middleware.GetActor(c),
		Name:        req.Name,
		CustomID:    req.CustomID,
		Values:      req.Values,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Get 物品详情
// @Summary      物品详情
// @Tags         物品
// @Param        id path int true "清单ID"
// @Param        item_id path int true "物品ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/{id}/items/{item_id} [get]
func (h *ItemHandler) Get(c *gin.Context) {
	inventoryID := paramID(c, "id")
	itemID := paramID(c, "item_id")
	if inventoryID == 0 || itemID == 0 {
		response.ErrorWithCode(c, 42200, "资源ID非法")
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), inventoryID, itemID, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// List 物品列表
// @Summary      物品列表(按序号排序)
// @Tags         物品
// @Param        id path int true "清单ID"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/{id}/items [get]
func (h *ItemHandler) List(c *gin.Context) {
	inventoryID := paramID(c, "id")
	if inventoryID == 0 {
		response.ErrorWithCode(c, 42200, "清单ID非法")
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	list, total, err := h.listUseCase.Execute(c.Request.Context(), inventoryID, middleware.GetActor(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, list, total, page, pageSize)
}

// Update 更新物品
// @Summary      更新物品
// @Tags         物品
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "清单ID"
// @Param        item_id path int true "物品ID"
// @Param        request body dto.UpdateItemRequest true "修改内容(version可选)"
// @Success      200 {object} response.Response
// @Failure      409 {object} response.Response "版本冲突或自定义ID重复"
// @Router       /api/v1/inventories/{id}/items/{item_id} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	inventoryID := paramID(c, "id")
	itemID := paramID(c, "item_id")
	if inventoryID == 0 || itemID == 0 {
		response.ErrorWithCode(c, 42200, "资源ID非法")
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 42201, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), appinv.UpdateItemRequest{
		InventoryID: inventoryID,
		ItemID:      itemID,
		Actor:       middleware.GetActor(c),
		Name:        req.Name,
		CustomID:    req.CustomID,
		Values:      req.Values,
		Version:     req.Version,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Delete 删除物品
// @Summary      删除物品
// @Tags         物品
// @Security     BearerAuth
// @Param        id path int true "清单ID"
// @Param        item_id path int true "物品ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/{id}/items/{item_id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	inventoryID := paramID(c, "id")
	itemID := paramID(c, "item_id")
	if inventoryID == 0 || itemID == 0 {
		response.ErrorWithCode(c, 42200, "资源ID非法")
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), inventoryID, itemID, middleware.GetActor(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "已删除"})
}

// ToggleLike 切换点赞
// @Summary      点赞/取消点赞
// @Tags         物品
// @Security     BearerAuth
// @Param        id path int true "清单ID"
// @Param        item_id path int true "物品ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/{id}/items/{item_id}/like [post]
func (h *ItemHandler) ToggleLike(c *gin.Context) {
	inventoryID := paramID(c, "id")
	itemID := paramID(c, "item_id")
	if inventoryID == 0 || itemID == 0 {
		response.ErrorWithCode(c, 42200, "资源ID非法")
		return
	}

	result, err := h.likeUseCase.Execute(c.Request.Context(), inventoryID, itemID, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
