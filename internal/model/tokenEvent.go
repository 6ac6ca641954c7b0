package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// pump.fun 新代币的固定供应量
const PUMP_TOKEN_SUPPLY = 1_000_000_000

// TokenEvent pumpportal推送的代币事件
type TokenEvent struct {
	Signature             string  `json:"signature"`
	Mint                  string  `json:"mint"`
	TraderPublicKey       string  `json:"traderPublicKey"`
	TxType                string  `json:"txType"`
	InitialBuy            float64 `json:"initialBuy"`
	SolAmount             float64 `json:"solAmount"`
	BondingCurveKey       string  `json:"bondingCurveKey"`
	VTokensInBondingCurve float64 `json:"vTokensInBondingCurve"`
	VSolInBondingCurve    float64 `json:"vSolInBondingCurve"`
	MarketCapSol          float64 `json:"marketCapSol"`
	Name                  string  `json:"name"`
	Symbol                string  `json:"symbol"`
	Uri                   string  `json:"uri"`
	Pool                  string  `json:"pool"`
}

// ToSnapshot 将新代币创建事件转换为审计用快照
// 创建事件没有持有者统计，相关字段由审计管线补齐
func (e *TokenEvent) ToSnapshot() *TokenSnapshot {
	now := time.Now().Unix()
	snap := &TokenSnapshot{
		ID:        e.Signature,
		Name:      e.Name,
		Ticker:    e.Symbol,
		Address:   e.Mint,
		Age:       0,
		Mcap:      e.MarketCapSol,
		Supply:    PUMP_TOKEN_SUPPLY,
		Liquidity: e.VSolInBondingCurve,
		Deployer:  e.TraderPublicKey,
		DeployAt:  now,
	}
	if snap.Supply > 0 {
		snap.Price = snap.Mcap / snap.Supply
	}
	return snap
}

// FormatTokenEvent 格式化显示代币事件信息
func FormatTokenEvent(data []byte) string {
	var event TokenEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Sprintf("解析消息失败: %v\n原始消息: %s", err, string(data))
	}

	return fmt.Sprintf(`
		==== 新代币事件信息 ====
		signature: %s
		mint: %s
		traderPublicKey: %s
		txType: %s
		solAmount: %.8f
		vSolInBondingCurve: %.8f
		marketCapSol: %.8f
		name: %s
		symbol: %s
		pool: %s
		====================
`,
		event.Signature,
		event.Mint,
		event.TraderPublicKey,
		event.TxType,
		event.SolAmount,
		event.VSolInBondingCurve,
		event.MarketCapSol,
		event.Name,
		event.Symbol,
		event.Pool,
	)
}
