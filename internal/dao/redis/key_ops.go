// 本文件包含键的删除操作
package redis

import (
	"context"

	"match_chat_server/pkg/errorx"
)

// DelKeyIfExists 删除键（如果存在）
func DelKeyIfExists(ctx context.Context, key string) error {
	if redisClient == nil {
		return errorx.New(errorx.CodeCacheError, "redis 未初始化")
	}
	exists, err := redisClient.Exists(ctx, key).Result()
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis exists key %s", key)
	}
	if exists == 1 {
		// UNLINK 在后台线程释放内存，不阻塞主线程
		if err := redisClient.Unlink(ctx, key).Err(); err != nil {
			return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink key %s", key)
		}
	}
	return nil
}

// DelKeysWithPattern 删除匹配模式的所有键
// 使用 SCAN 分批扫描 + UNLINK 异步删除，避免阻塞 Redis
func DelKeysWithPattern(ctx context.Context, pattern string) error {
	if redisClient == nil {
		return errorx.New(errorx.CodeCacheError, "redis 未初始化")
	}
	var cursor uint64
	for {
		var keys []string
		var err error
		keys, cursor, err = redisClient.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return errorx.Wrapf(err, errorx.CodeCacheError, "redis scan pattern %s", pattern)
		}
		if len(keys) > 0 {
			if err := redisClient.Unlink(ctx, keys...).Err(); err != nil {
				return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink keys with pattern %s", pattern)
			}
		}
		if cursor == 0 {
			break
		}
	}
	return nil
}
