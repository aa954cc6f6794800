package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/inventoryhub/pkg/jwt"
	"github.com/xiebiao/inventoryhub/pkg/response"
)

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 验证Token有效性
// 3. 检查Token黑名单
// 4. 将用户信息注入Context
//
// 公开清单允许匿名查看,所以大部分读接口用OptionalAuth:
// 有Token按登录用户处理,没有按匿名处理,由权限策略决定能看什么
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithCode(c, 40100, "请先登录")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithCode(c, 40101, "Token格式错误")
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 检查Token黑名单（用户已登出或Token被强制失效）
		isBlacklisted, err := m.sessionStore.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			response.ErrorWithCode(c, 50000, "验证Token失败")
			c.Abort()
			return
		}
		if isBlacklisted {
			response.ErrorWithCode(c, 40102, "Token已失效，请重新登录")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err) // 自动处理ErrTokenExpired、ErrInvalidToken
			c.Abort()
			return
		}

		injectClaims(c, claims, tokenString)
		c.Next()
	}
}

// OptionalAuth 可选登录
// 有Token则验证,没有则以匿名身份继续(公开清单允许匿名查看)
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString := parts[1]
			if blacklisted, err := m.sessionStore.IsInBlacklist(c.Request.Context(), tokenString); err == nil && !blacklisted {
				if claims, err := m.jwtManager.ParseToken(tokenString); err == nil {
					injectClaims(c, claims, tokenString)
				}
			}
		}

		c.Next()
	}
}

// RequireAdmin 要求管理员身份(必须在RequireAuth之后)
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetIsAdmin(c) {
			response.ErrorWithCode(c, 40104, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

func injectClaims(c *gin.Context, claims *jwt.Claims, tokenString string) {
	c.Set("user_id", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("name", claims.Name)
	c.Set("is_admin", claims.IsAdmin)
	c.Set("access_token", tokenString)
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 从Context获取当前登录用户ID(未登录为0)
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetIsAdmin 从Context获取管理员标记
func GetIsAdmin(c *gin.Context) bool {
	if v, exists := c.Get("is_admin"); exists {
		if admin, ok := v.(bool); ok {
			return admin
		}
	}
	return false
}

// GetAccessToken 从Context获取原始Access Token(登出时加黑名单用)
func GetAccessToken(c *gin.Context) string {
	if v, exists := c.Get("access_token"); exists {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}

// GetActor 从Context构造权限主体
// 匿名请求返回nil(权限策略对nil主体只放行公开清单的查看)
func GetActor(c *gin.Context) *inventory.Actor {
	userID := GetUserID(c)
	if userID == 0 {
		return nil
	}
	return &inventory.Actor{ID: userID, IsAdmin: GetIsAdmin(c)}
}

// MustGetUserID 从Context获取用户ID(用于已通过RequireAuth的Handler)
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
