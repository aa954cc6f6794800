package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为MySQL唯一索引冲突(错误码1062)
//
// 本项目依赖的唯一索引:
// - items(inventory_id, custom_id): 清单内自定义ID唯一
// - users(email): 邮箱唯一
// - access_grants(inventory_id, user_id): 授权二元组唯一
// - likes(item_id, user_id): 点赞二元组唯一
//
// 冲突由调用方映射为对应的业务错误(如ErrCustomIDDuplicate),
// 这里只做驱动层的识别
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// gorm在部分驱动版本不翻译1062,退化为错误文本匹配
	return strings.Contains(err.Error(), "Duplicate entry")
}
