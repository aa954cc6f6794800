package dto

import (
	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
)

// CreateInventoryRequest 创建清单请求
type CreateInventoryRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	IsPublic    bool             `json:"is_public"`
	Format      inventory.Format `json:"format"`
	Tags        []string         `json:"tags"`
}

// UpdateInventoryRequest 更新清单请求
// version用指针区分"未携带"(无条件更新)与"携带"(乐观锁比对,0也是合法值)
type UpdateInventoryRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	ImageURL    string                 `json:"image_url"`
	IsPublic    *bool                  `json:"is_public"`
	Fields      *inventory.FieldConfig `json:"fields"`
	Tags        []string               `json:"tags"`
	Version     *int                   `json:"version"`
}

// UpdateNumberingRequest 更新编号规则请求
// format和reset_sequence_to各自独立生效,都可省略
type UpdateNumberingRequest struct {
	Format          *inventory.Format `json:"format"`
	ResetSequenceTo *uint64           `json:"reset_sequence_to"`
}

// ReplaceGrantsRequest 整体替换授权名单请求
type ReplaceGrantsRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required"`
}

// CreateCommentRequest 发表评论请求
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}
