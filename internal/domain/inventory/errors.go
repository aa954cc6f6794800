package inventory

import (
	apperrors "github.com/xiebiao/inventoryhub/pkg/errors"
)

// 清单领域错误定义
var (
	// ErrInventoryNotFound 清单不存在
	ErrInventoryNotFound = apperrors.ErrInventoryNotFound

	// ErrItemNotFound 物品不存在
	ErrItemNotFound = apperrors.ErrItemNotFound

	// ErrTagNotFound 标签不存在
	ErrTagNotFound = apperrors.New(apperrors.ErrCodeTagNotFound, "标签不存在")

	// ErrVersionConflict 版本冲突(记录已被他人修改)
	ErrVersionConflict = apperrors.ErrVersionConflict

	// ErrCustomIDDuplicate 自定义ID在清单内重复
	ErrCustomIDDuplicate = apperrors.ErrCustomIDDuplicate

	// ErrForbidden 无权操作此清单
	ErrForbidden = apperrors.ErrForbidden

	// ErrInvalidTitle 标题不能为空
	ErrInvalidTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "标题不能为空")

	// ErrInvalidItemName 物品名称不能为空
	ErrInvalidItemName = apperrors.New(apperrors.ErrCodeInvalidParams, "物品名称不能为空")

	// ErrTooManyFieldSlots 自定义字段槽位超限
	ErrTooManyFieldSlots = apperrors.New(apperrors.ErrCodeInvalidParams, "每种类型的自定义字段最多3个")

	// ErrInvalidSegment 模板段配置非法
	ErrInvalidSegment = apperrors.New(apperrors.ErrCodeInvalidParams, "模板段配置非法")

	// ErrInvalidFieldSlot 自定义字段槽位配置非法
	ErrInvalidFieldSlot = apperrors.New(apperrors.ErrCodeInvalidParams, "启用的自定义字段必须有名称")
)
