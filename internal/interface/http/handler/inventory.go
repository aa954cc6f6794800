package handler

import (
	"github.com/gin-gonic/gin"

	appinv "github.com/xiebiao/inventoryhub/internal/application/inventory"
	"github.com/xiebiao/inventoryhub/internal/interface/http/dto"
	"github.com/xiebiao/inventoryhub/internal/interface/http/middleware"
	"github.com/xiebiao/inventoryhub/pkg/response"
)

// InventoryHandler 清单HTTP处理器
type InventoryHandler struct {
	createUseCase    *appinv.CreateInventoryUseCase
	updateUseCase    *appinv.UpdateInventoryUseCase
	deleteUseCase    *appinv.DeleteInventoryUseCase
	getUseCase       *appinv.GetInventoryUseCase
	listUseCase      *appinv.ListInventoriesUseCase
	numberingUseCase *appinv.UpdateNumberingUseCase
	getNumbering     *appinv.GetNumberingUseCase
	accessUseCase    *appinv.ManageAccessUseCase
	commentUseCase   *appinv.CommentUseCase
}

// NewInventoryHandler 创建清单处理器
func NewInventoryHandler(
	createUseCase *appinv.CreateInventoryUseCase,
	updateUseCase *appinv.UpdateInventoryUseCase,
	deleteUseCase *appinv.DeleteInventoryUseCase,
	getUseCase *appinv.GetInventoryUseCase,
	listUseCase *appinv.ListInventoriesUseCase,
	numberingUseCase *appinv.UpdateNumberingUseCase,
	getNumbering *appinv.GetNumberingUseCase,
	accessUseCase *appinv.ManageAccessUseCase,
	commentUseCase *appinv.CommentUseCase,
) *InventoryHandler {
	return &InventoryHandler{
		createUseCase:    createUseCase,
		updateUseCase:    updateUseCase,
		deleteUseCase:    deleteUseCase,
		getUseCase:       getUseCase,
		listUseCase:      listUseCase,
		numberingUseCase: numberingUseCase,
		getNumbering:     getNumbering,
		accessUseCase:    accessUseCase,
		commentUseCase:   commentUseCase,
	}
}

// Create 创建清单
// @Summary      创建清单
// @Tags         清单
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateInventoryRequest true "清单信息"
// @Success      201 {object} response.Response
// @Router       /api/v1/inventories [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req dto.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 42201, "参数错误: "+err.Error())
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), appinv.CreateInventoryRequest{
		Actor:       middleware.GetActor(c),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		IsPublic:    req.IsPublic,
		Format:      req.Format,
		Tags:        req.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Get 清单详情
// @Summary      清单详情
// @Tags         清单
// @Produce      json
// @Param        id path int true "清单ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "无权查看"
// @Failure      404 {object} response.Response "清单不存在"
// @Router       /api/v1/inventories/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	id := paramID(c, "id")
	if id == 0 {
		response.ErrorWithCode(c, 42200, "清单ID非法")
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Update 更新清单
// @Summary      更新清单
// @Tags         清单
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "清单ID"
// @Param        request body dto.UpdateInventoryRequest true "修改内容(version可选,携带则做乐观锁比对)"
// @Success      200 {object} response.Response
// @Failure      409 {object} response.Response "版本冲突"
// @Router       /api/v1/inventories/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	id := paramID(c, "id")
	if id == 0 {
		response.ErrorWithCode(c, 42200, "清单ID非法")
		return
	}

	var req dto.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 42201, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), appinv.UpdateInventoryRequest{
		InventoryID: id,
		Actor:       middleware.GetActor(c),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		IsPublic:    req.IsPublic,
		Fields:      req.Fields,
		Tags:        req.Tags,
		Version:     req.Version,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Delete 删除清单
// @Summary      删除清单(级联删除物品/授权/评论)
// @Tags         清单
// @Security     BearerAuth
// @Param        id path int true "清单ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/{id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	id := paramID(c, "id")
	if id == 0 {
		response.ErrorWithCode(c, 42200, "清单ID非法")
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), id, middleware.GetActor(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "已删除"})
}

// List 浏览清单列表
// @Summary      清单列表
// @Tags         清单
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Param        category query string false "分类过滤"
// @Param        tag_id query int false "标签过滤"
// @Param        sort query string false "排序(created_at_desc/created_at_asc/title_asc)"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories [get]
func (h *InventoryHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	list, total, err := h.listUseCase.Execute(c.Request.Context(), appinv.ListRequest{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		TagID:    uint(queryInt(c, "tag_id", 0)),
		SortBy:   c.Query("sort"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, list, total, page, pageSize)
}

// ListMine 我的清单
// @Summary      我的清单
// @Tags         清单
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/mine [get]
func (h *InventoryHandler) ListMine(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	list, total, err := h.listUseCase.ListMine(c.Request.Context(), middleware.GetActor(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, list, total, page, pageSize)
}

// ListAccessible 可写清单(所有者+被授权)
// @Summary      可写清单
// @Tags         清单
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/accessible [get]
func (h *InventoryHandler) ListAccessible(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	list, total, err := h.listUseCase.ListAccessible(c.Request.Context(), middleware.GetActor(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, list, total, page, pageSize)
}

// Home 首页聚合(最新+热门+标签云)
// @Summary      首页聚合
// @Tags         清单
// @Param        limit query int false "每组条数"
// @Success      200 {object} response.Response
// @Router       /api/v1/home [get]
func (h *InventoryHandler) Home(c *gin.Context) {
	result, err := h.listUseCase.Home(c.Request.Context(), queryInt(c, "limit", 5))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetNumbering 查询编号规则
// @Summary      查询ID模板与序号计数器
// @Tags         编号
// @Param        id path int true "清单ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/{id}/numbers [get]
func (h *InventoryHandler) GetNumbering(c *gin.Context) {
	id := paramID(c, "id")
	if id == 0 {
		response.ErrorWithCode(c, 42200, "清单ID非法")
		return
	}

	result, err := h.getNumbering.Execute(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateNumbering 更新编号规则
// @Summary      更新ID模板和/或重置序号计数器
// @Tags         编号
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "清单ID"
// @Param        request body dto.UpdateNumberingRequest true "format与reset_sequence_to各自独立生效"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/{id}/numbers [put]
func (h *InventoryHandler) UpdateNumbering(c *gin.Context) {
	id := paramID(c, "id")
	if id == 0 {
		response.ErrorWithCode(c, 42200, "清单ID非法")
		return
	}

	var req dto.UpdateNumberingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 42201, "参数错误: "+err.Error())
		return
	}

	result, err := h.numberingUseCase.Execute(c.Request.Context(), appinv.UpdateNumberingRequest{
		InventoryID:     id,
		Actor:           middleware.GetActor(c),
		Format:          req.Format,
		ResetSequenceTo: req.ResetSequenceTo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListGrants 查询授权名单
// @Summary      查询授权名单
// @Tags         授权
// @Security     BearerAuth
// @Param        id path int true "清单ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/{id}/access [get]
func (h *InventoryHandler) ListGrants(c *gin.Context) {
	id := paramID(c, "id")
	if id == 0 {
		response.ErrorWithCode(c, 42200, "清单ID非法")
		return
	}

	result, err := h.accessUseCase.ListGrants(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ReplaceGrants 整体替换授权名单
// @Summary      整体替换授权名单
// @Tags         授权
// @Security     BearerAuth
// @Accept       json
// @Param        id path int true "清单ID"
// @Param        request body dto.ReplaceGrantsRequest true "授权用户ID列表"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/{id}/access [put]
func (h *InventoryHandler) ReplaceGrants(c *gin.Context) {
	id := paramID(c, "id")
	if id == 0 {
		response.ErrorWithCode(c, 42200, "清单ID非法")
		return
	}

	var req dto.ReplaceGrantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 42201, "参数错误: "+err.Error())
		return
	}

	if err := h.accessUseCase.ReplaceGrants(c.Request.Context(), id, middleware.GetActor(c), req.UserIDs); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "授权名单已更新"})
}

// CreateComment 发表评论
// @Summary      发表评论
// @Tags         评论
// @Security     BearerAuth
// @Accept       json
// @Param        id path int true "清单ID"
// @Param        request body dto.CreateCommentRequest true "评论内容"
// @Success      201 {object} response.Response
// @Router       /api/v1/inventories/{id}/comments [post]
func (h *InventoryHandler) CreateComment(c *gin.Context) {
	id := paramID(c, "id")
	if id == 0 {
		response.ErrorWithCode(c, 42200, "清单ID非法")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 42201, "参数错误: "+err.Error())
		return
	}

	result, err := h.commentUseCase.Create(c.Request.Context(), id, middleware.GetActor(c), req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListComments 评论列表
// @Summary      评论列表
// @Tags         评论
// @Param        id path int true "清单ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/{id}/comments [get]
func (h *InventoryHandler) ListComments(c *gin.Context) {
	id := paramID(c, "id")
	if id == 0 {
		response.ErrorWithCode(c, 42200, "清单ID非法")
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	list, total, err := h.commentUseCase.List(c.Request.Context(), id, middleware.GetActor(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, list, total, page, pageSize)
}

// DeleteComment 删除评论
// @Summary      删除评论(作者/清单所有者/管理员)
// @Tags         评论
// @Security     BearerAuth
// @Param        id path int true "清单ID"
// @Param        comment_id path int true "评论ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/inventories/{id}/comments/{comment_id} [delete]
func (h *InventoryHandler) DeleteComment(c *gin.Context) {
	id := paramID(c, "id")
	commentID := paramID(c, "comment_id")
	if id == 0 || commentID == 0 {
		response.ErrorWithCode(c, 42200, "资源ID非法")
		return
	}

	if err := h.commentUseCase.Delete(c.Request.Context(), id, commentID, middleware.GetActor(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "已删除"})
}
