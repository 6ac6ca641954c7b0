package queue

import (
	"sync"

	"claw_audit/internal/common"
	"claw_audit/internal/model"
)

// AuditQueue 审计请求队列
type AuditQueue struct {
	name     string                   // 队列名称
	messages chan *model.AuditRequest // 消息通道
	handlers []AuditHandler           // 消息处理器
	mutex    sync.RWMutex             // 读写锁
}

// AuditHandler 审计请求处理器接口
type AuditHandler interface {
	HandleAudit(req *model.AuditRequest)
}

// NewAuditQueue 创建新审计队列
func NewAuditQueue(name string, bufferSize int) *AuditQueue {
	return &AuditQueue{
		name:     name,
		messages: make(chan *model.AuditRequest, bufferSize),
		handlers: make([]AuditHandler, 0),
	}
}

// RegisterHandler 注册审计处理器
func (q *AuditQueue) RegisterHandler(handler AuditHandler) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Submit 提交审计请求，队列满时丢弃
func (q *AuditQueue) Submit(req *model.AuditRequest) {
	select {
	case q.messages <- req:
		common.Log.Debugf("审计请求已入队 %s: token=%s", q.name, req.TokenAddress)
	default:
		common.Log.Warnf("队列 %s 已满，审计请求被丢弃: token=%s", q.name, req.TokenAddress)
	}
}

// Start 启动请求处理
func (q *AuditQueue) Start() {
	go func() {
		for req := range q.messages {
			q.mutex.RLock()
			handlers := q.handlers
			q.mutex.RUnlock()

			for _, handler := range handlers {
				handler.HandleAudit(req)
			}
		}
	}()

	common.Log.Infof("队列 %s 已启动", q.name)
}

// Stop 停止请求处理
func (q *AuditQueue) Stop() {
	close(q.messages)
	common.Log.Infof("队列 %s 已停止", q.name)
}

// 全局审计队列
var (
	auditQueue *AuditQueue
	once       sync.Once
)

// InitGlobalQueue 初始化全局审计队列
func InitGlobalQueue() {
	once.Do(func() {
		auditQueue = NewAuditQueue("audit_queue", 100)
		auditQueue.Start()
		common.Log.Info("全局审计队列已初始化")
	})
}

// GetAuditQueue 获取全局审计队列
func GetAuditQueue() *AuditQueue {
	if auditQueue == nil {
		InitGlobalQueue()
	}
	return auditQueue
}
