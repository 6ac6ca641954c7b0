package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"claw_audit/internal/audit"
	"claw_audit/internal/common"
	"claw_audit/internal/model"
	"claw_audit/internal/queue"
	"claw_audit/internal/risk"
	"claw_audit/internal/ws"
)

// Bot 监听pump.fun新代币事件并对每个新代币执行风险审计
type Bot struct {
	ctx        context.Context
	cancelFunc context.CancelFunc
	mutex      sync.Mutex
	workerPool chan struct{}   // 工作池通道，限制并发审计数量
	workerWg   sync.WaitGroup  // 等待所有审计线程完成
	builder    *audit.Builder  // 审计报告构建器
	audited    map[string]bool // 已审计的代币，避免重复
}

// NewBot 创建新的审计Bot实例
func NewBot(builder *audit.Builder) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		ctx:        ctx,
		cancelFunc: cancel,
		workerPool: make(chan struct{}, common.MAX_CONCURRENT_AUDITS),
		builder:    builder,
		audited:    make(map[string]bool),
	}

	// Bot自身作为全局队列的审计处理器
	queue.InitGlobalQueue()
	queue.GetAuditQueue().RegisterHandler(b)

	return b
}

// RunListener 监听pump.fun上的新代币并提交审计
func (b *Bot) RunListener() error {
	common.Log.Info("开始监听pump.fun上的新代币...")

	// 初始化全局WebSocket连接
	if err := ws.InitGlobalWS(); err != nil {
		return fmt.Errorf("初始化WebSocket连接失败: %w", err)
	}

	// 连续超时计数
	consecutiveTimeouts := 0
	maxConsecutiveTimeouts := 3

	// 消息处理循环
	for {
		select {
		case <-b.ctx.Done():
			// 等待所有审计线程完成
			b.workerWg.Wait()
			return nil
		default:
			wsConn := ws.GetGlobalWS()
			if wsConn == nil {
				common.Log.Warn("WebSocket连接未建立，尝试重新连接...")
				if err := ws.Reconnect(); err != nil {
					common.Log.Errorf("重新连接WebSocket失败: %v", err)
					time.Sleep(time.Second * 3)
				}
				continue
			}

			// 读取消息
			_, message, err := wsConn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err) {
					common.Log.Warnf("WebSocket连接已关闭: %v, 将重新连接", err)
					if rerr := ws.Reconnect(); rerr != nil {
						common.Log.Errorf("重新连接WebSocket失败: %v", rerr)
					}
					continue
				}

				// 检查是否是超时错误
				if err.Error() == "i/o timeout" || err.Error() == "read tcp: i/o timeout" {
					consecutiveTimeouts++
					common.Log.Warnf("读取消息超时 (%d/%d), 继续尝试...", consecutiveTimeouts, maxConsecutiveTimeouts)
					if consecutiveTimeouts >= maxConsecutiveTimeouts {
						if rerr := ws.Reconnect(); rerr != nil {
							common.Log.Errorf("重新连接WebSocket失败: %v", rerr)
						}
						consecutiveTimeouts = 0
					}
					continue
				}

				common.Log.Errorf("读取消息出错: %v", err)
				continue
			}

			// 成功读取，重置超时计数
			consecutiveTimeouts = 0

			var data map[string]interface{}
			if err := json.Unmarshal(message, &data); err != nil {
				common.Log.Errorf("解析消息失败: %v", err)
				continue
			}

			if _, ok := data["method"]; ok {
				// 系统消息或订阅确认消息
				if method, ok := data["method"].(string); ok {
					common.Log.Infof("收到系统消息: %s", method)
				}
				continue
			}

			var tokenEvent model.TokenEvent
			if err := json.Unmarshal(message, &tokenEvent); err != nil {
				common.Log.Errorf("解析为TokenEvent失败: %v", err)
				continue
			}

			// 只处理新代币创建事件
			if tokenEvent.TxType != "create" || tokenEvent.Mint == "" {
				continue
			}

			if b.markAudited(tokenEvent.Mint) {
				continue
			}

			common.Log.Info(model.FormatTokenEvent(message))

			// 转换为快照并提交到审计队列
			queue.GetAuditQueue().Submit(model.NewAuditRequest(tokenEvent.ToSnapshot()))
		}
	}
}

// HandleAudit 处理一条审计请求(queue.AuditHandler实现)
func (b *Bot) HandleAudit(req *model.AuditRequest) {
	// 获取工作池槽位
	b.workerPool <- struct{}{}
	b.workerWg.Add(1)

	go func() {
		defer func() {
			<-b.workerPool
			b.workerWg.Done()
		}()

		b.processToken(req.Snapshot)
	}()
}

// processToken 对单个代币执行审计并输出报告
func (b *Bot) processToken(snap *model.TokenSnapshot) {
	common.Log.Infof("开始审计代币: %s (%s)", snap.Address, snap.Ticker)

	report := b.builder.GetAuditReport(b.ctx, snap)

	rendered := model.FormatAuditReport(
		report,
		risk.RiskBar(report.RiskScore),
		risk.GetRiskVerdict(report.RiskScore),
		risk.GetRiskLevel(report.RiskScore),
	)
	fmt.Println(rendered)

	common.Log.WithField("token", snap.Address).
		WithField("score", report.RiskScore).
		WithField("realData", report.IsRealData).
		Info("审计完成")
}

// markAudited 标记代币已审计，返回之前是否已标记
func (b *Bot) markAudited(mint string) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.audited[mint] {
		return true
	}
	b.audited[mint] = true
	return false
}

// Close 关闭Bot并清理资源
func (b *Bot) Close() {
	b.cancelFunc()

	// 关闭全局WebSocket连接
	ws.Close()

	// 等待所有审计线程完成
	b.workerWg.Wait()
	common.Log.Info("所有审计线程已完成，Bot已关闭")
}
