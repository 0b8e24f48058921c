package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"match_chat_server/internal/config"
	dao "match_chat_server/internal/dao/mysql"
	myredis "match_chat_server/internal/dao/redis"
	"match_chat_server/internal/gateway/websocket"
	"match_chat_server/internal/handler"
	"match_chat_server/internal/https_server"
	"match_chat_server/internal/infrastructure/logger"
	"match_chat_server/internal/service/auth"
	"match_chat_server/internal/service/bus"
	"match_chat_server/internal/service/channel"
	"match_chat_server/internal/service/match"
	"match_chat_server/internal/service/presence"
	"match_chat_server/internal/service/session"
	"match_chat_server/internal/service/typing"
	"match_chat_server/internal/service/user"
	"match_chat_server/pkg/util/jwt"
	"match_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库与 Repository 层
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 与雪花 ID
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 6. 初始化房间事件总线
	broker := bus.NewBroker(conf.BusConfig)

	// 7. 初始化 Service 层
	presenceSvc := presence.NewService(repos.User)
	matchSvc := match.NewService(repos.User, repos.ChatRoom)
	channelSvc := channel.NewService(repos.Message, repos.ChatRoom, broker)
	channelSvc.SetRecallWindow(conf.ChatConfig.DeleteForEveryoneWindow())
	typingSvc := typing.NewService(myredis.NewTypingStore())
	userSvc := user.NewService(repos.User)
	authSvc := auth.NewService(repos.User, presenceSvc)
	zap.L().Info("Service 层初始化成功")

	// 8. 初始化 WebSocket 网关
	gateway := websocket.NewGateway(session.Deps{
		Match:          matchSvc,
		Channel:        channelSvc,
		Typing:         typingSvc,
		Presence:       presenceSvc,
		SubscribeDelay: conf.ChatConfig.SubscribeDelay(),
		TypingDebounce: conf.ChatConfig.TypingDebounce(),
	}, presenceSvc, repos.User)

	// 9. 初始化 HTTP 服务器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("init validator translator failed", zap.Error(err))
	}
	handlers := handler.NewHandlers(authSvc, userSvc, presenceSvc, gateway)
	engine := https_server.Init(handlers)

	// 10. 启动服务
	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		if err := engine.Run(addr); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("服务器启动成功",
		zap.String("host", conf.MainConfig.Host), zap.Int("port", conf.MainConfig.Port))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	if err := broker.Close(); err != nil {
		zap.L().Error("close event bus", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
}
