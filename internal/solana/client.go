package solana

import (
	"context"
	"fmt"
	"math"
	"strconv"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"claw_audit/internal/common"
	"claw_audit/internal/holders"
	"claw_audit/internal/model"
)

// Client 包装审计所需的Solana RPC查询
type Client struct {
	rpcClient *rpc.Client
}

// New 创建新的Solana客户端
func New(endpoint string) *Client {
	return &Client{
		rpcClient: rpc.New(endpoint),
	}
}

// Close 关闭客户端连接
func (c *Client) Close() error {
	return c.rpcClient.Close()
}

// FetchSupply 查询代币总供应量(已按精度折算)
func (c *Client) FetchSupply(ctx context.Context, mint string) (float64, error) {
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, fmt.Errorf("无效的mint地址 %s: %w", mint, err)
	}

	result, err := c.rpcClient.GetTokenSupply(ctx, mintKey, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("查询代币供应量失败: %w", err)
	}
	if result == nil || result.Value == nil {
		return 0, fmt.Errorf("代币供应量响应为空")
	}

	raw, err := strconv.ParseFloat(result.Value.Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("解析供应量失败: %w", err)
	}

	return raw / math.Pow(10, float64(result.Value.Decimals)), nil
}

// FetchHolderAccounts 查询最大的代币账户列表
func (c *Client) FetchHolderAccounts(ctx context.Context, mint string) ([]holders.Account, error) {
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("无效的mint地址 %s: %w", mint, err)
	}

	result, err := c.rpcClient.GetTokenLargestAccounts(ctx, mintKey, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("查询代币账户失败: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("代币账户响应为空")
	}

	accounts := make([]holders.Account, 0, len(result.Value))
	for _, v := range result.Value {
		raw, err := strconv.ParseUint(v.Amount, 10, 64)
		if err != nil {
			common.Log.Warnf("解析账户 %s 持仓数量失败: %v", v.Address, err)
			continue
		}
		accounts = append(accounts, holders.Account{
			Address:   v.Address.String(),
			RawAmount: raw,
			Decimals:  v.Decimals,
		})
	}

	return accounts, nil
}

// FetchAuthorityFlags 查询mint账户并解析铸币/冻结权限标志
func (c *Client) FetchAuthorityFlags(ctx context.Context, mint string) (*model.AuthorityFlags, error) {
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("无效的mint地址 %s: %w", mint, err)
	}

	result, err := c.rpcClient.GetAccountInfo(ctx, mintKey)
	if err != nil {
		return nil, fmt.Errorf("查询mint账户失败: %w", err)
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("mint账户不存在")
	}

	data := result.Value.Data.GetBinary()
	if len(data) == 0 {
		return nil, fmt.Errorf("mint账户数据为空")
	}

	var mintAccount token.Mint
	if err := bin.NewBinDecoder(data).Decode(&mintAccount); err != nil {
		return nil, fmt.Errorf("解析mint账户数据失败: %w", err)
	}

	flags := &model.AuthorityFlags{
		HasMintAuthority:   mintAccount.MintAuthority != nil,
		HasFreezeAuthority: mintAccount.FreezeAuthority != nil,
		Supply:             float64(mintAccount.Supply) / math.Pow(10, float64(mintAccount.Decimals)),
		Decimals:           mintAccount.Decimals,
	}
	if mintAccount.MintAuthority != nil {
		flags.MintAuthority = mintAccount.MintAuthority.String()
	}
	if mintAccount.FreezeAuthority != nil {
		flags.FreezeAuthority = mintAccount.FreezeAuthority.String()
	}

	return flags, nil
}

// FetchDeployerActivity 查询部署者近期交易签名数量，上限100条
func (c *Client) FetchDeployerActivity(ctx context.Context, address string) (int, error) {
	account, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("无效的部署者地址 %s: %w", address, err)
	}

	limit := common.MAX_SIGNATURE_FETCH
	signatures, err := c.rpcClient.GetSignaturesForAddressWithOpts(ctx, account, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return 0, fmt.Errorf("查询部署者交易签名失败: %w", err)
	}

	return len(signatures), nil
}
