package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

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
	"github.com/xiebiao/inventoryhub/pkg/metrics"
	"github.com/xiebiao/inventoryhub/pkg/mq"
	"github.com/xiebiao/inventoryhub/pkg/response"
)

// main 主程序入口
// 说明：手动依赖注入（wire.go提供等价的Wire注入版本）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())
	fmt.Printf("  - 搜索索引: %s (db=%d)\n", cfg.Search.Addr(), cfg.Search.DB)

	// 2. 初始化监控指标
	metrics.InitMetrics()

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接（会话存储，连不上直接失败）
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 初始化搜索索引适配器（连不上不阻止启动，服务降级）
	searchClient := redis.NewSearchClient(cfg)
	indexer := search.NewIndexer(searchClient, cfg.Search.OpTimeout)
	indexer.Initialize(context.Background())
	fmt.Printf("✓ 搜索索引状态: %s\n", indexer.State())

	// 6. 初始化消息发布者（可选，Enabled=false或连接失败时事件发布静默跳过）
	var publisher appinv.EventPublisher
	if cfg.MQ.Enabled {
		p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Printf("⚠️ 连接RabbitMQ失败(事件发布已禁用): %v", err)
		} else {
			publisher = p
			defer p.Close()
		}
	}

	// 7. 依赖注入（手动组装）
	// 依赖链：Repository ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	invRepo := mysql.NewInventoryRepository(db)
	itemRepo := mysql.NewItemRepository(db)
	tagRepo := mysql.NewTagRepository(db)
	commentRepo := mysql.NewCommentRepository(db)
	likeRepo := mysql.NewLikeRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore, cfg.JWT.RefreshTokenExpire)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore, cfg.JWT.AccessTokenExpire)
	refreshUseCase := appuser.NewRefreshTokenUseCase(jwtManager)
	searchUsersUseCase := appuser.NewSearchUsersUseCase(userService)

	createInvUseCase := appinv.NewCreateInventoryUseCase(invRepo, itemRepo, tagRepo, userRepo, indexer)
	updateInvUseCase := appinv.NewUpdateInventoryUseCase(invRepo, itemRepo, tagRepo, userRepo, indexer)
	deleteInvUseCase := appinv.NewDeleteInventoryUseCase(invRepo, indexer, publisher)
	getInvUseCase := appinv.NewGetInventoryUseCase(invRepo, itemRepo, tagRepo, userRepo)
	listInvUseCase := appinv.NewListInventoriesUseCase(invRepo, itemRepo, tagRepo)
	numberingUseCase := appinv.NewUpdateNumberingUseCase(invRepo)
	getNumberingUseCase := appinv.NewGetNumberingUseCase(invRepo)
	accessUseCase := appinv.NewManageAccessUseCase(invRepo, userRepo)
	commentUseCase := appinv.NewCommentUseCase(invRepo, commentRepo, userRepo)

	createItemUseCase := appinv.NewCreateItemUseCase(invRepo, itemRepo, txManager, indexer, publisher)
	updateItemUseCase := appinv.NewUpdateItemUseCase(invRepo, itemRepo, indexer, publisher)
	deleteItemUseCase := appinv.NewDeleteItemUseCase(invRepo, itemRepo, indexer, publisher)
	listItemsUseCase := appinv.NewListItemsUseCase(invRepo, itemRepo, likeRepo)
	getItemUseCase := appinv.NewGetItemUseCase(invRepo, itemRepo, likeRepo)
	likeUseCase := appinv.NewToggleLikeUseCase(invRepo, itemRepo, likeRepo)

	searchUseCase := appsearch.NewUseCase(indexer)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, refreshUseCase, searchUsersUseCase)
	inventoryHandler := handler.NewInventoryHandler(
		createInvUseCase, updateInvUseCase, deleteInvUseCase, getInvUseCase, listInvUseCase,
		numberingUseCase, getNumberingUseCase, accessUseCase, commentUseCase,
	)
	itemHandler := handler.NewItemHandler(
		createItemUseCase, updateItemUseCase, deleteItemUseCase, listItemsUseCase, getItemUseCase, likeUseCase,
	)
	searchHandler := handler.NewSearchHandler(searchUseCase, indexer)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 8. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	registerRoutes(r, userHandler, inventoryHandler, itemHandler, searchHandler, authMiddleware)

	// 9. 启动服务（优雅停机）
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
		fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
		fmt.Printf("   监控指标: http://localhost%s/metrics\n", addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 收到停止信号，正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("服务关闭异常: %v", err)
	}
	log.Println("✅ 服务已退出")
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	inventoryHandler *handler.InventoryHandler,
	itemHandler *handler.ItemHandler,
	searchHandler *handler.SearchHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/refresh", userHandler.RefreshToken)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
			users.GET("/search", authMiddleware.RequireAuth(), userHandler.SearchUsers)
		}

		// 首页聚合（公开）
		v1.GET("/home", inventoryHandler.Home)

		// 清单模块
		// 读接口用OptionalAuth：公开清单匿名可看，私有清单由权限策略判定
		inventories := v1.Group("/inventories")
		{
			inventories.GET("", inventoryHandler.List)
			inventories.GET("/mine", authMiddleware.RequireAuth(), inventoryHandler.ListMine)
			inventories.GET("/accessible", authMiddleware.RequireAuth(), inventoryHandler.ListAccessible)
			inventories.POST("", authMiddleware.RequireAuth(), inventoryHandler.Create)

			inventories.GET("/:id", authMiddleware.OptionalAuth(), inventoryHandler.Get)
			inventories.PUT("/:id", authMiddleware.RequireAuth(), inventoryHandler.Update)
			inventories.DELETE("/:id", authMiddleware.RequireAuth(), inventoryHandler.Delete)

			// 编号规则
			inventories.GET("/:id/numbers", authMiddleware.OptionalAuth(), inventoryHandler.GetNumbering)
			inventories.PUT("/:id/numbers", authMiddleware.RequireAuth(), inventoryHandler.UpdateNumbering)

			// 访问授权
			inventories.GET("/:id/access", authMiddleware.RequireAuth(), inventoryHandler.ListGrants)
			inventories.PUT("/:id/access", authMiddleware.RequireAuth(), inventoryHandler.ReplaceGrants)

			// 评论
			inventories.GET("/:id/comments", authMiddleware.OptionalAuth(), inventoryHandler.ListComments)
			inventories.POST("/:id/comments", authMiddleware.RequireAuth(), inventoryHandler.CreateComment)
			inventories.DELETE("/:id/comments/:comment_id", authMiddleware.RequireAuth(), inventoryHandler.DeleteComment)

			// 物品
			inventories.GET("/:id/items", authMiddleware.OptionalAuth(), itemHandler.List)
			inventories.POST("/:id/items", authMiddleware.RequireAuth(), itemHandler.Create)
			inventories.GET("/:id/items/:item_id", authMiddleware.OptionalAuth(), itemHandler.Get)
			inventories.PUT("/:id/items/:item_id", authMiddleware.RequireAuth(), itemHandler.Update)
			inventories.DELETE("/:id/items/:item_id", authMiddleware.RequireAuth(), itemHandler.Delete)
			inventories.POST("/:id/items/:item_id/like", authMiddleware.RequireAuth(), itemHandler.ToggleLike)
		}

		// 搜索模块
		searchGroup := v1.Group("/search")
		{
			searchGroup.GET("", searchHandler.Search)
			searchGroup.GET("/index", authMiddleware.RequireAuth(), searchHandler.IndexStatus)
			searchGroup.POST("/index/reinitialize",
				authMiddleware.RequireAuth(), authMiddleware.RequireAdmin(),
				searchHandler.ReinitializeIndex)
		}
	}
}
