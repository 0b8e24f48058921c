// 本文件实现异步缓存写入的 Worker Pool
// 状态写、缓存失效等非关键路径操作通过任务队列异步执行，避免阻塞业务主流程
package redis

import (
	"go.uber.org/zap"
)

// cacheTask 缓存任务
type cacheTask func()

// cacheTaskChan 任务队列
var cacheTaskChan chan cacheTask

// InitCacheWorker 初始化缓存 Worker Pool
// workerCount 为 worker 数量，queueSize 为任务队列长度
func InitCacheWorker(workerCount int, queueSize int) {
	cacheTaskChan = make(chan cacheTask, queueSize)
	for i := 0; i < workerCount; i++ {
		go startWorker(i)
	}
	zap.L().Info("cache worker pool started",
		zap.Int("workers", workerCount), zap.Int("queue_size", queueSize))
}

// startWorker 启动单个 worker，panic 后自动重启
func startWorker(id int) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("cache worker panic, restarting",
				zap.Int("worker_id", id), zap.Any("panic", r))
			go startWorker(id)
		}
	}()
	for task := range cacheTaskChan {
		task()
	}
}

// SubmitCacheTask 提交缓存任务
// 队列未初始化或已满时同步执行，保证任务不丢失
func SubmitCacheTask(task cacheTask) {
	if cacheTaskChan == nil {
		task()
		return
	}
	select {
	case cacheTaskChan <- task:
	default:
		zap.L().Warn("cache task queue full, executing synchronously")
		task()
	}
}
