package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"claw_audit/internal/audit"
	"claw_audit/internal/bot"
	"claw_audit/internal/common"
	"claw_audit/internal/deployer"
	"claw_audit/internal/model"
	"claw_audit/internal/queue"
	"claw_audit/internal/risk"
	"claw_audit/internal/rpcguard"
	solclient "claw_audit/internal/solana"
)

const defaultRPCEndpoint = "https://api.mainnet-beta.solana.com"

// 命令行参数
var (
	listenMode bool
	mint       string
	deployAddr string
	tokenName  string
	ticker     string
	age        int64
	mcap       float64
	liquidity  float64
	supply     float64
	holderNum  int
)

func init() {
	flag.BoolVar(&listenMode, "listen", false, "监听模式：持续审计pump.fun新代币")
	flag.StringVar(&mint, "mint", "", "代币合约地址")
	flag.StringVar(&deployAddr, "deployer", "", "部署者地址(可选)")
	flag.StringVar(&tokenName, "name", "", "代币名称(可选)")
	flag.StringVar(&ticker, "ticker", "", "代币符号(可选)")
	flag.Int64Var(&age, "age", 0, "代币年龄(秒)")
	flag.Float64Var(&mcap, "mcap", 0, "市值")
	flag.Float64Var(&liquidity, "liquidity", 0, "流动性")
	flag.Float64Var(&supply, "supply", model.PUMP_TOKEN_SUPPLY, "总供应量")
	flag.IntVar(&holderNum, "holders", 0, "持有者数量")
}

func main() {
	flag.Parse()

	// 加载.env配置
	if err := godotenv.Load(); err != nil {
		common.Log.Debug("未找到.env文件，使用环境变量与默认配置")
	}

	endpoint := os.Getenv("SOLANA_RPC_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultRPCEndpoint
	}

	client := solclient.New(endpoint)
	defer client.Close()

	guard := rpcguard.New(envDuration("RPC_TIMEOUT_MS", 5000), envInt("RPC_MAX_FAILURES", 3))

	cacheDir := os.Getenv("CACHE_DIR")
	if cacheDir == "" {
		cacheDir = "cache"
	}

	// 部署者活动查询同样经过熔断器
	fetch := func(ctx context.Context, address string) (int, error) {
		var count int
		err := guard.Do(ctx, "deployer_activity", func(c context.Context) error {
			var ferr error
			count, ferr = client.FetchDeployerActivity(c, address)
			return ferr
		})
		return count, err
	}

	estimator := deployer.NewEstimator(fetch, cacheDir)
	builder := audit.NewBuilder(client, guard, estimator)

	if listenMode {
		runListener(builder)
		return
	}

	runSingleAudit(builder)
}

// runSingleAudit 审计单个代币并打印报告
func runSingleAudit(builder *audit.Builder) {
	if mint == "" {
		fmt.Println("必须通过 -mint 提供代币合约地址，或使用 -listen 进入监听模式")
		flag.PrintDefaults()
		os.Exit(1)
	}

	snap := &model.TokenSnapshot{
		Name:      tokenName,
		Ticker:    ticker,
		Address:   mint,
		Age:       age,
		Mcap:      mcap,
		Supply:    supply,
		Liquidity: liquidity,
		Holders:   holderNum,
		Deployer:  deployAddr,
	}

	report := builder.GetAuditReport(context.Background(), snap)

	fmt.Println(model.FormatAuditReport(
		report,
		risk.RiskBar(report.RiskScore),
		risk.GetRiskVerdict(report.RiskScore),
		risk.GetRiskLevel(report.RiskScore),
	))
}

// runListener 启动监听Bot，直到收到终止信号
func runListener(builder *audit.Builder) {
	queue.InitGlobalQueue()

	auditBot := bot.NewBot(builder)

	go func() {
		if err := auditBot.RunListener(); err != nil {
			common.Log.Errorf("Bot监听器错误: %v", err)
		}
	}()

	fmt.Println("审计系统已启动，正在监听新代币. 按CTRL+C退出.")

	// 等待终止信号
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("正在关闭审计系统...")

	// 先停Bot让监听循环退出，再关队列，避免向已关闭的通道提交
	auditBot.Close()
	queue.GetAuditQueue().Stop()

	fmt.Println("审计系统已正常关闭.")
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		common.Log.Warnf("环境变量 %s 无效: %v", key, err)
		return fallback
	}
	return n
}

func envDuration(key string, fallbackMs int) time.Duration {
	return time.Duration(envInt(key, fallbackMs)) * time.Millisecond
}
