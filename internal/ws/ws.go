package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"claw_audit/internal/common"
)

const endpoint = "wss://pumpportal.fun/api/data"

var (
	globalWS       *websocket.Conn
	wsMutex        sync.Mutex
	reconnectDelay = time.Second * 3
)

// InitGlobalWS 初始化全局WebSocket连接
func InitGlobalWS() error {
	wsMutex.Lock()
	defer wsMutex.Unlock()

	if globalWS != nil {
		return nil
	}

	return connectAndSubscribe()
}

// GetGlobalWS 获取全局WebSocket连接
func GetGlobalWS() *websocket.Conn {
	wsMutex.Lock()
	defer wsMutex.Unlock()
	return globalWS
}

// Reconnect 断开后延迟重连
func Reconnect() error {
	wsMutex.Lock()
	defer wsMutex.Unlock()

	if globalWS != nil {
		globalWS.Close()
		globalWS = nil
	}

	time.Sleep(reconnectDelay)
	return connectAndSubscribe()
}

// connectAndSubscribe 建立连接并订阅新代币事件
func connectAndSubscribe() error {
	ws, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return fmt.Errorf("连接WebSocket服务失败: %w", err)
	}

	globalWS = ws

	// 订阅新代币创建事件
	payload := map[string]interface{}{
		"method": "subscribeNewToken",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化订阅请求失败: %w", err)
	}

	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("发送订阅请求失败: %w", err)
	}

	common.Log.Info("成功连接到pumpportal.fun WebSocket API并订阅新代币事件")
	return nil
}

// Close 关闭全局WebSocket连接
func Close() {
	wsMutex.Lock()
	defer wsMutex.Unlock()

	if globalWS != nil {
		globalWS.Close()
		globalWS = nil
	}
}
