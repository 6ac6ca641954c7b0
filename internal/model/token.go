package model

import "fmt"

// TokenSnapshot 表示审计时刻的代币快照，由外部采集方提供，核心只读
type TokenSnapshot struct {
	ID        string  `json:"id"`        // 内部标识
	Name      string  `json:"name"`      // 代币名称
	Ticker    string  `json:"ticker"`    // 代币符号
	Address   string  `json:"address"`   // 代币合约地址(mint)
	Age       int64   `json:"age"`       // 部署以来的秒数
	Mcap      float64 `json:"mcap"`      // 市值
	Volume5m  float64 `json:"volume5m"`  // 5分钟交易量
	Holders   int     `json:"holders"`   // 持有者数量
	Price     float64 `json:"price"`     // 当前价格
	Supply    float64 `json:"supply"`    // 总供应量(已按精度折算)
	Liquidity float64 `json:"liquidity"` // 流动性
	Deployer  string  `json:"deployer"`  // 部署者地址
	DeployAt  int64   `json:"deployAt"`  // 部署时间戳(秒)
}

// LiquidityRatio 流动性与市值之比，市值为0时返回0
func (t *TokenSnapshot) LiquidityRatio() float64 {
	if t.Mcap <= 0 {
		return 0
	}
	return t.Liquidity / t.Mcap
}

// FormatAge 格式化代币年龄显示
func FormatAge(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm", seconds/60)
	}
	if seconds < 86400 {
		return fmt.Sprintf("%dh", seconds/3600)
	}
	return fmt.Sprintf("%dd", seconds/86400)
}

// FormatMcap 格式化市值显示
func FormatMcap(mcap float64) string {
	if mcap >= 1000000 {
		return fmt.Sprintf("$%.2fM", mcap/1000000)
	}
	if mcap >= 1000 {
		return fmt.Sprintf("$%.1fK", mcap/1000)
	}
	return fmt.Sprintf("$%.0f", mcap)
}
