// 本文件包含 Set 集合操作，用于维护在线用户集合
package redis

import (
	"context"

	"match_chat_server/pkg/errorx"
)

// AddToSet 向集合添加成员
func AddToSet(ctx context.Context, key string, members ...interface{}) error {
	if redisClient == nil {
		return errorx.New(errorx.CodeCacheError, "redis 未初始化")
	}
	if err := redisClient.SAdd(ctx, key, members...).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis sadd key %s", key)
	}
	return nil
}

// RemoveFromSet 从集合中移除成员
func RemoveFromSet(ctx context.Context, key string, members ...interface{}) error {
	if redisClient == nil {
		return errorx.New(errorx.CodeCacheError, "redis 未初始化")
	}
	if err := redisClient.SRem(ctx, key, members...).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis srem key %s", key)
	}
	return nil
}

// GetSetMembers 获取集合中的所有成员
func GetSetMembers(ctx context.Context, key string) ([]string, error) {
	if redisClient == nil {
		return nil, errorx.New(errorx.CodeCacheError, "redis 未初始化")
	}
	members, err := redisClient.SMembers(ctx, key).Result()
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis smembers key %s", key)
	}
	return members, nil
}

// IsSetMember 判断成员是否在集合中
func IsSetMember(ctx context.Context, key string, member interface{}) (bool, error) {
	if redisClient == nil {
		return false, errorx.New(errorx.CodeCacheError, "redis 未初始化")
	}
	ok, err := redisClient.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, errorx.Wrapf(err, errorx.CodeCacheError, "redis sismember key %s", key)
	}
	return ok, nil
}
