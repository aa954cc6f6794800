package user

import (
	"context"

	"github.com/xiebiao/inventoryhub/internal/domain/user"
)

// SearchUsersUseCase 用户搜索用例
// 授权名单编辑页的补全:按昵称/邮箱前缀匹配
type SearchUsersUseCase struct {
	userService user.Service
}

// NewSearchUsersUseCase 创建用户搜索用例
func NewSearchUsersUseCase(userService user.Service) *SearchUsersUseCase {
	return &SearchUsersUseCase{userService: userService}
}

// UserSummary 用户摘要DTO(不含敏感信息)
type UserSummary struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Execute 执行用户搜索
func (uc *SearchUsersUseCase) Execute(ctx context.Context, keyword string, limit int) ([]*UserSummary, error) {
	users, err := uc.userService.Search(ctx, keyword, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]*UserSummary, len(users))
	for i, u := range users {
		summaries[i] = &UserSummary{UserID: u.ID, Name: u.Name, Email: u.Email}
	}
	return summaries, nil
}
