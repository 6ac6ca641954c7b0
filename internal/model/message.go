package model

import "time"

// AuditRequest 审计请求消息
type AuditRequest struct {
	TokenAddress string                 // 代币地址
	TokenSymbol  string                 // 代币符号
	TokenName    string                 // 代币名称
	Snapshot     *TokenSnapshot         // 审计用快照
	Timestamp    time.Time              // 入队时间
	ExtraData    map[string]interface{} // 额外数据
}

// NewAuditRequest 创建审计请求
func NewAuditRequest(snap *TokenSnapshot) *AuditRequest {
	return &AuditRequest{
		TokenAddress: snap.Address,
		TokenSymbol:  snap.Ticker,
		TokenName:    snap.Name,
		Snapshot:     snap,
		Timestamp:    time.Now(),
		ExtraData:    make(map[string]interface{}),
	}
}
