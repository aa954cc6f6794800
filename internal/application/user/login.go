package user

import (
	"context"
	"time"

	"github.com/xiebiao/inventoryhub/internal/domain/user"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/inventoryhub/pkg/jwt"
)

// LoginUseCase 用户登录用例
// 登录成功后:
// 1. 签发Access+Refresh双Token
// 2. 在Redis记录会话(TTL与Refresh Token一致)
type LoginUseCase struct {
	userService   user.Service
	jwtManager    *jwt.Manager
	sessionStore  *redis.SessionStore
	refreshExpire time.Duration
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
	refreshExpire time.Duration,
) *LoginUseCase {
	return &LoginUseCase{
		userService:   userService,
		jwtManager:    jwtManager,
		sessionStore:  sessionStore,
		refreshExpire: refreshExpire,
	}
}

// LoginRequest 登录请求DTO
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	ClientIP string `json:"-"`
}

// LoginResponse 登录响应DTO
type LoginResponse struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	IsAdmin      bool   `json:"is_admin"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Execute 执行登录用例
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Name, u.IsAdmin)
	if err != nil {
		return nil, err
	}

	// 会话记录失败不阻断登录(Token本身已签发)
	_ = uc.sessionStore.SaveSession(ctx, u.ID, map[string]interface{}{
		"login_at":  time.Now().Format(time.RFC3339),
		"client_ip": req.ClientIP,
	}, uc.refreshExpire)

	return &LoginResponse{
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
		IsAdmin:      u.IsAdmin,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
// Access Token进黑名单(TTL=Token剩余有效期上限),会话删除
type LogoutUseCase struct {
	sessionStore *redis.SessionStore
	accessExpire time.Duration
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore *redis.SessionStore, accessExpire time.Duration) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, accessExpire: accessExpire}
}

// Execute 执行登出用例
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string) error {
	if err := uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.accessExpire); err != nil {
		return err
	}
	return uc.sessionStore.DeleteSession(ctx, userID)
}

// RefreshTokenUseCase 刷新Access Token用例
type RefreshTokenUseCase struct {
	jwtManager *jwt.Manager
}

// NewRefreshTokenUseCase 创建刷新Token用例
func NewRefreshTokenUseCase(jwtManager *jwt.Manager) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{jwtManager: jwtManager}
}

// RefreshResponse 刷新Token响应DTO
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Execute 执行刷新Token用例
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	accessToken, err := uc.jwtManager.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{AccessToken: accessToken}, nil
}
