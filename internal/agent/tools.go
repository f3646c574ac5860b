package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AlexZinkM/yield-agent/internal/client"
	"github.com/AlexZinkM/yield-agent/internal/model"
)

// Tool is a function the model may call during a query
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
	Call        func(ctx context.Context, args json.RawMessage) (string, error)
}

func (t Tool) definition() client.ToolDefinition {
	return client.ToolDefinition{
		Type: "function",
		Function: client.FunctionDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		},
	}
}

// Answerer answers free-form questions over the knowledge base
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// WalletOperations is the wallet service as seen by the agent tools
type WalletOperations interface {
	Create(ctx context.Context, userAddress string) (*model.WalletResponse, error)
	Lookup(ctx context.Context, userAddress string) (*model.WalletResponse, error)
	Fund(ctx context.Context, req model.FundRequest) (*model.TxResponse, error)
	Mint(ctx context.Context, req model.MintRequest) (*model.TxResponse, error)
	Swap(ctx context.Context, req model.SwapRequest) (*model.TxResponse, error)
	Stake(ctx context.Context, req model.StakeRequest) (*model.TxResponse, error)
	Balance(ctx context.Context, userAddress, assetID string) (*model.BalanceResponse, error)
}

const knowledgeToolName = "KnowledgeBaseQA"

func knowledgeTool(qa Answerer) Tool {
	return Tool{
		Name:        knowledgeToolName,
		Description: "Use this to search for TVL, APY, or DeFi information based on JSON knowledge base.",
		Parameters: json.RawMessage(`{"type":"object","properties":{` +
			`"query":{"type":"string","description":"the question to look up"}},"required":["query"]}`),
		Call: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}
			return qa.Answer(ctx, in.Query)
		},
	}
}

const userAddressSchema = `"user_address":{"type":"string","description":"address of the user owning the wallet"}`

func walletTools(w WalletOperations) []Tool {
	return []Tool{
		{
			Name:        "create_wallet",
			Description: "Create a custodial wallet for a user address, or return the one already registered.",
			Parameters:  objectSchema([]string{"user_address"}, userAddressSchema),
			Call: walletCall(func(ctx context.Context, in walletArgs) (any, error) {
				resp, err := w.Create(ctx, in.UserAddress)
				if resp != nil {
					resp.QR = ""
				}
				return resp, err
			}),
		},
		{
			Name:        "get_wallet",
			Description: "Get the wallet id, network and default address registered for a user address.",
			Parameters:  objectSchema([]string{"user_address"}, userAddressSchema),
			Call: walletCall(func(ctx context.Context, in walletArgs) (any, error) {
				return w.Lookup(ctx, in.UserAddress)
			}),
		},
		{
			Name:        "request_faucet_funds",
			Description: "Request testnet funds from the faucet into the user's wallet. Leave asset_id empty for the native asset.",
			Parameters: objectSchema([]string{"user_address"}, userAddressSchema,
				`"asset_id":{"type":"string"}`),
			Call: walletCall(func(ctx context.Context, in walletArgs) (any, error) {
				return w.Fund(ctx, model.FundRequest{UserAddress: in.UserAddress, AssetID: in.AssetID})
			}),
		},
		{
			Name:        "mint",
			Description: "Mint an amount of an asset into the user's wallet.",
			Parameters: objectSchema([]string{"user_address", "asset_id", "amount"}, userAddressSchema,
				`"asset_id":{"type":"string"}`, `"amount":{"type":"string","description":"decimal amount"}`),
			Call: walletCall(func(ctx context.Context, in walletArgs) (any, error) {
				return w.Mint(ctx, model.MintRequest{UserAddress: in.UserAddress, AssetID: in.AssetID, Amount: in.Amount})
			}),
		},
		{
			Name:        "swap",
			Description: "Swap an amount of token_in for token_out from the user's wallet through spender.",
			Parameters: objectSchema([]string{"user_address", "spender", "token_in", "token_out", "amount"}, userAddressSchema,
				`"spender":{"type":"string"}`, `"token_in":{"type":"string"}`, `"token_out":{"type":"string"}`,
				`"amount":{"type":"string","description":"decimal amount"}`),
			Call: walletCall(func(ctx context.Context, in walletArgs) (any, error) {
				return w.Swap(ctx, model.SwapRequest{
					UserAddress: in.UserAddress,
					Spender:     in.Spender,
					TokenIn:     in.TokenIn,
					TokenOut:    in.TokenOut,
					Amount:      in.Amount,
				})
			}),
		},
		{
			Name:        "stake",
			Description: "Stake an amount of an asset from the user's wallet into a protocol.",
			Parameters: objectSchema([]string{"user_address", "asset_id", "protocol", "spender", "amount"}, userAddressSchema,
				`"asset_id":{"type":"string"}`, `"protocol":{"type":"string"}`, `"spender":{"type":"string"}`,
				`"amount":{"type":"string","description":"decimal amount"}`),
			Call: walletCall(func(ctx context.Context, in walletArgs) (any, error) {
				return w.Stake(ctx, model.StakeRequest{
					UserAddress: in.UserAddress,
					AssetID:     in.AssetID,
					Protocol:    in.Protocol,
					Spender:     in.Spender,
					Amount:      in.Amount,
				})
			}),
		},
		{
			Name:        "get_balance",
			Description: "Get the balance of an asset held by the user's wallet.",
			Parameters: objectSchema([]string{"user_address"}, userAddressSchema,
				`"asset_id":{"type":"string"}`),
			Call: walletCall(func(ctx context.Context, in walletArgs) (any, error) {
				return w.Balance(ctx, in.UserAddress, in.AssetID)
			}),
		},
	}
}

type walletArgs struct {
	UserAddress string `json:"user_address"`
	AssetID     string `json:"asset_id"`
	Amount      string `json:"amount"`
	Spender     string `json:"spender"`
	TokenIn     string `json:"token_in"`
	TokenOut    string `json:"token_out"`
	Protocol    string `json:"protocol"`
}

func walletCall(fn func(ctx context.Context, in walletArgs) (any, error)) func(context.Context, json.RawMessage) (string, error) {
	return func(ctx context.Context, args json.RawMessage) (string, error) {
		var in walletArgs
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		out, err := fn(ctx, in)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(out)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func objectSchema(required []string, properties ...string) json.RawMessage {
	req, _ := json.Marshal(required)
	return json.RawMessage(`{"type":"object","properties":{` + strings.Join(properties, ",") + `},"required":` + string(req) + `}`)
}
