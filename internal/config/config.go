// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // 服务器监听地址，如 "0.0.0.0"
	Port    int    `toml:"port"`    // 服务器监听端口
	Mode    string `toml:"mode"`    // 运行模式："dev" 或 "release"
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"` // 无密码留空
	Db       int    `toml:"db"`
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// BusConfig 房间事件总线配置
// 单机默认 "channel" 模式；多实例部署切到 "kafka" 做跨实例广播
type BusConfig struct {
	Mode      string        `toml:"mode"`      // "channel" 或 "kafka"
	HostPort  string        `toml:"hostPort"`  // Kafka 服务器地址，如 "localhost:9092"
	RoomTopic string        `toml:"roomTopic"` // 房间事件主题
	Partition int           `toml:"partition"` // 分区数
	Timeout   time.Duration `toml:"timeout"`   // 超时时间（秒）
}

// ChatConfig 聊天行为配置
// 零值时由各组件回退到 pkg/constants 中的默认值
type ChatConfig struct {
	DeleteForEveryoneWindowHours int `toml:"deleteForEveryoneWindowHours"` // 撤回窗口（小时），默认 48
	TypingDebounceMs             int `toml:"typingDebounceMs"`             // 输入防抖（毫秒），默认 2000
	SubscribeDelayMs             int `toml:"subscribeDelayMs"`             // 订阅延迟（毫秒），默认 1000
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret             string `toml:"secret"`             // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry  int    `toml:"accessTokenExpiry"`  // Access Token 有效期（分钟）
	RefreshTokenExpiry int    `toml:"refreshTokenExpiry"` // Refresh Token 有效期（小时）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 节点 ID，范围 0-1023，分布式部署时每台机器需唯一
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	BusConfig       `toml:"busConfig"`
	ChatConfig      `toml:"chatConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml", // 本地开发配置（优先）
		"configs/config.toml",
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
	}
	return config
}

// DeleteForEveryoneWindow 撤回窗口时长，零值回退到 48 小时
func (c *ChatConfig) DeleteForEveryoneWindow() time.Duration {
	if c.DeleteForEveryoneWindowHours <= 0 {
		return 48 * time.Hour
	}
	return time.Duration(c.DeleteForEveryoneWindowHours) * time.Hour
}

// TypingDebounce 输入防抖时长，零值回退到 2000ms
func (c *ChatConfig) TypingDebounce() time.Duration {
	if c.TypingDebounceMs <= 0 {
		return 2000 * time.Millisecond
	}
	return time.Duration(c.TypingDebounceMs) * time.Millisecond
}

// SubscribeDelay 订阅延迟时长，零值回退到 1000ms
func (c *ChatConfig) SubscribeDelay() time.Duration {
	if c.SubscribeDelayMs <= 0 {
		return 1000 * time.Millisecond
	}
	return time.Duration(c.SubscribeDelayMs) * time.Millisecond
}
