package transport

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/inference"
)

// #region client-struct
// Client calls a remote Inference service.
type Client struct {
	conn *grpc.ClientConn
}

// #endregion client-struct

// #region constructor
// NewClient connects to an Inference server. Extra options are appended
// after the insecure transport credentials.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #endregion close

// #region evaluate
// Evaluate sends one crisp input and returns the crisp output together with
// the rule-base version that produced it.
func (c *Client) Evaluate(ctx context.Context, in fuzzy.CrispInput) (fuzzy.CrispOutput, string, error) {
	out, version, _, err := c.call(ctx, in, false)
	return out, version, err
}

// EvaluateTrace is Evaluate plus the rules that fired.
func (c *Client) EvaluateTrace(ctx context.Context, in fuzzy.CrispInput) (fuzzy.CrispOutput, string, inference.Trace, error) {
	return c.call(ctx, in, true)
}

func (c *Client) call(ctx context.Context, in fuzzy.CrispInput, trace bool) (fuzzy.CrispOutput, string, inference.Trace, error) {
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, evaluateFullName, encodeRequest(in, trace), resp); err != nil {
		return fuzzy.CrispOutput{}, "", nil, fmt.Errorf("evaluate rpc: %w", err)
	}
	out, version, firings, err := decodeResponse(resp)
	if err != nil {
		return fuzzy.CrispOutput{}, "", nil, fmt.Errorf("evaluate rpc: %w", err)
	}
	return out, version, firings, nil
}

// #endregion evaluate
