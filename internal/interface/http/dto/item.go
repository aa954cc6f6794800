package dto

// CreateItemRequest 创建物品请求
// custom_id可选:携带时跳过模板渲染且不消费序号
type CreateItemRequest struct {
	Name     string                 `json:"name" binding:"required"`
	CustomID string                 `json:"custom_id"`
	Values   map[string]interface{} `json:"values"`
}

// UpdateItemRequest 更新物品请求
type UpdateItemRequest struct {
	Name     string                 `json:"name"`
	CustomID string                 `json:"custom_id"`
	Values   map[string]interface{} `json:"values"`
	Version  *int                   `json:"version"`
}
