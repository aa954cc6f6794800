//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// 工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appinv "github.com/xiebiao/inventoryhub/internal/application/inventory"
	appsearch "github.com/xiebiao/inventoryhub/internal/application/search"
	appuser "github.com/xiebiao/inventoryhub/internal/application/user"
	"github.com/xiebiao/inventoryhub/internal/domain/user"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/config"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/search"
	"github.com/xiebiao/inventoryhub/internal/interface/http/handler"
	"github.com/xiebiao/inventoryhub/internal/interface/http/middleware"
	"github.com/xiebiao/inventoryhub/pkg/jwt"
	"github.com/xiebiao/inventoryhub/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
	provideIndexer,
	providePublisher,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewInventoryRepository,
	mysql.NewItemRepository,
	mysql.NewTagRepository,
	mysql.NewCommentRepository,
	mysql.NewLikeRepository,
	mysql.NewTxManager,
	wire.Bind(new(appinv.Transactor), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	provideLoginUseCase,
	provideLogoutUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewSearchUsersUseCase,

	appinv.NewCreateInventoryUseCase,
	appinv.NewUpdateInventoryUseCase,
	appinv.NewDeleteInventoryUseCase,
	appinv.NewGetInventoryUseCase,
	appinv.NewListInventoriesUseCase,
	appinv.NewUpdateNumberingUseCase,
	appinv.NewGetNumberingUseCase,
	appinv.NewManageAccessUseCase,
	appinv.NewCommentUseCase,
	appinv.NewCreateItemUseCase,
	appinv.NewUpdateItemUseCase,
	appinv.NewDeleteItemUseCase,
	appinv.NewListItemsUseCase,
	appinv.NewGetItemUseCase,
	appinv.NewToggleLikeUseCase,

	appsearch.NewUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewInventoryHandler,
	handler.NewItemHandler,
	handler.NewSearchHandler,
)

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideIndexer 创建搜索索引适配器并探活
// 连不上不报错：适配器进入降级状态，服务照常启动
func provideIndexer(cfg *config.Config) *search.Indexer {
	indexer := search.NewIndexer(redis.NewSearchClient(cfg), cfg.Search.OpTimeout)
	indexer.Initialize(context.Background())
	return indexer
}

// providePublisher 创建消息发布者(可选依赖)
// MQ未启用或连接失败时返回nil，事件发布静默跳过
func providePublisher(cfg *config.Config) appinv.EventPublisher {
	if !cfg.MQ.Enabled {
		return nil
	}
	p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		log.Printf("⚠️ 连接RabbitMQ失败(事件发布已禁用): %v", err)
		return nil
	}
	return p
}

// provideLoginUseCase 登录用例需要从配置提取会话TTL
func provideLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
	cfg *config.Config,
) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(userService, jwtManager, sessionStore, cfg.JWT.RefreshTokenExpire)
}

// provideLogoutUseCase 登出用例需要从配置提取黑名单TTL
func provideLogoutUseCase(sessionStore *redis.SessionStore, cfg *config.Config) *appuser.LogoutUseCase {
	return appuser.NewLogoutUseCase(sessionStore, cfg.JWT.AccessTokenExpire)
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	inventoryHandler *handler.InventoryHandler,
	itemHandler *handler.ItemHandler,
	searchHandler *handler.SearchHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())
	registerRoutes(r, userHandler, inventoryHandler, itemHandler, searchHandler, authMiddleware)
	return r
}

// InitializeApp 初始化整个应用
// Wire会按依赖链自动调用所有构造函数：
// *gin.Engine ← Handler ← UseCase ← Service/Repository ← *gorm.DB ← *config.Config
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		wire.Bind(new(appinv.SearchIndex), new(*search.Indexer)),
		wire.Bind(new(appsearch.Backend), new(*search.Indexer)),
		provideGinEngine,
	)
	return nil, nil
}
