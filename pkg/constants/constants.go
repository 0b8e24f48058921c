package constants

import "time"

const (
	CHANNEL_SIZE  = 100 // 通道大小
	REDIS_TIMEOUT = 1   // redis timeout (分钟)

	// DELETE_FOR_EVERYONE_WINDOW 消息撤回（对所有人删除）的时间窗口
	DELETE_FOR_EVERYONE_WINDOW = 48 * time.Hour

	// TYPING_DEBOUNCE 输入状态防抖间隔：停止输入该时长后回写 isTyping=false
	TYPING_DEBOUNCE = 2000 * time.Millisecond

	// SUBSCRIBE_DELAY 房间创建到消息订阅建立之间的等待时长
	// 容忍存储层创建后到可查询之间的传播延迟
	SUBSCRIBE_DELAY = 1000 * time.Millisecond

	// USERNAME_MIN_LEN / USERNAME_MAX_LEN 用户名长度限制
	USERNAME_MIN_LEN = 3
	USERNAME_MAX_LEN = 30

	// MAX_INTERESTS 个人资料兴趣标签数量上限
	MAX_INTERESTS = 10
)

// 用户在线状态
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// 消息状态，生命周期只会前进：sending -> sent -> delivered -> read
const (
	MessageSending   = "sending"
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageRead      = "read"
)

// Redis 键前缀
const (
	TypingKeyPrefix     = "typing:"       // typing:{roomId}_{userId} -> TypingSignal JSON
	TypingChannelPrefix = "typing_ch:"    // typing_ch:{roomId}:{userId} 发布/订阅通道
	OnlineUsersKey      = "online_users"  // 在线用户集合
	UserListCacheKey    = "user_list_all" // 用户列表缓存
)
