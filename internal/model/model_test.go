package model

import (
	"strings"
	"testing"
	"time"

	"claw_audit/internal/common"
)

func TestShortenAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{"完整地址", "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", "7xKX...gAsU"},
		{"短地址原样返回", "abcd1234", "abcd1234"},
		{"空地址", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortenAddress(tt.address); got != tt.want {
				t.Errorf("ShortenAddress(%q) = %q, want %q", tt.address, got, tt.want)
			}
		})
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{30, "30s"},
		{90, "1m"},
		{3599, "59m"},
		{7200, "2h"},
		{172800, "2d"},
	}

	for _, tt := range tests {
		if got := FormatAge(tt.seconds); got != tt.want {
			t.Errorf("FormatAge(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatMcap(t *testing.T) {
	tests := []struct {
		mcap float64
		want string
	}{
		{500, "$500"},
		{2500, "$2.5K"},
		{1500000, "$1.50M"},
	}

	for _, tt := range tests {
		if got := FormatMcap(tt.mcap); got != tt.want {
			t.Errorf("FormatMcap(%v) = %q, want %q", tt.mcap, got, tt.want)
		}
	}
}

func TestLiquidityRatio(t *testing.T) {
	tests := []struct {
		name  string
		token TokenSnapshot
		want  float64
	}{
		{"正常比率", TokenSnapshot{Mcap: 1000, Liquidity: 100}, 0.1},
		{"市值为0", TokenSnapshot{Mcap: 0, Liquidity: 100}, 0},
		{"市值为负", TokenSnapshot{Mcap: -5, Liquidity: 100}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.LiquidityRatio(); got != tt.want {
				t.Errorf("LiquidityRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToSnapshot(t *testing.T) {
	event := &TokenEvent{
		Signature:          "sig111",
		Mint:               "Mint111",
		TraderPublicKey:    "Dep111",
		TxType:             "create",
		MarketCapSol:       30,
		VSolInBondingCurve: 25,
		Name:               "Test Token",
		Symbol:             "TST",
	}

	snap := event.ToSnapshot()

	if snap.ID != "sig111" || snap.Address != "Mint111" || snap.Deployer != "Dep111" {
		t.Errorf("标识字段转换错误: %+v", snap)
	}
	if snap.Name != "Test Token" || snap.Ticker != "TST" {
		t.Errorf("名称字段转换错误: %+v", snap)
	}
	if snap.Supply != PUMP_TOKEN_SUPPLY {
		t.Errorf("Supply = %v, want %v", snap.Supply, float64(PUMP_TOKEN_SUPPLY))
	}
	if snap.Age != 0 {
		t.Errorf("新创建代币Age = %d, want 0", snap.Age)
	}
	if snap.Price != snap.Mcap/snap.Supply {
		t.Errorf("Price = %v, want %v", snap.Price, snap.Mcap/snap.Supply)
	}
}

func TestFormatAuditReport(t *testing.T) {
	report := &AuditReport{
		Token: &TokenSnapshot{
			Name:    "Test Token",
			Ticker:  "TST",
			Address: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
			Age:     600,
			Mcap:    5000,
		},
		HolderAnalysis: &HolderAnalysis{
			TopHolders: []HolderRecord{
				{Address: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", Percentage: 20, IsDeployer: true},
				{Address: "8yLYuh3DX98e08UYKTEqcE6kClifUrB94UASvKptgBtV", Percentage: 10},
			},
		},
		RiskFactors: []RiskFactor{
			{Type: common.FACTOR_CRITICAL, Message: "MINT AUTHORITY ACTIVE", Impact: 2},
			{Type: common.FACTOR_SUCCESS, Message: "LOW DEV HOLDINGS", Impact: 0},
		},
		RiskScore: 7.5,
		DeployerHistory: &DeployerHistory{
			TokensDeployed: 10,
			RuggedCount:    5,
			RugRate:        50,
			Verdict:        "HIGH RISK DEPLOYER",
		},
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		IsRealData:  true,
	}

	out := FormatAuditReport(report, "███████████░░░░", "HIGH RISK - NOT RECOMMENDED", common.RISK_HIGH)

	wants := []string{
		"Test Token (TST)",
		"7.5/10",
		"███████████░░░░",
		"HIGH RISK - NOT RECOMMENDED",
		"LIVE CHAIN DATA",
		"[!] MINT AUTHORITY ACTIVE",
		"[+] LOW DEV HOLDINGS",
		"deployed: 10  rugged: 5  rug rate: 50%",
		"7xKX...gAsU",
		"(DEV)",
	}
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("报告输出缺少 %q", w)
		}
	}
}

func TestFormatAuditReport_SyntheticSource(t *testing.T) {
	report := &AuditReport{
		Token:      &TokenSnapshot{Name: "T", Ticker: "T", Address: "x"},
		RiskScore:  1,
		IsRealData: false,
	}

	out := FormatAuditReport(report, "", "LOW RISK - RELATIVELY SAFE", common.RISK_LOW)

	if !strings.Contains(out, "DEGRADED / SYNTHETIC DATA") {
		t.Error("降级报告应标注合成数据来源")
	}
}
