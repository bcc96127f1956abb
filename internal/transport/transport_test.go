package transport

import (
	"context"
	"math"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/logging"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/ruleset"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/store"
)

// #region helpers
func defaultSystem(t *testing.T) *pipeline.System {
	t.Helper()
	doc, err := ruleset.Default()
	require.NoError(t, err)
	p, err := doc.Compile()
	require.NoError(t, err)
	sys := pipeline.NewSystem(nil)
	sys.Swap(p.WithVersion("v-test"))
	return sys
}

func serve(t *testing.T, srv *Server) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	Register(gs, srv)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	c, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// #endregion helpers

// #region rpc-tests
func TestEvaluate_RoundTrip(t *testing.T) {
	c := serve(t, NewServer(defaultSystem(t), nil, nil))

	out, version, err := c.Evaluate(context.Background(), fuzzy.CrispInput{0, -1, -1, -1, 0})
	require.NoError(t, err)
	require.Equal(t, "v-test", version)
	require.Equal(t, 1.0, out.Get(fuzzy.ForwardBackwards))
	require.InDelta(t, 0, out.Get(fuzzy.LeftRight), 1e-12)
}

func TestEvaluate_NaNSurvivesWire(t *testing.T) {
	c := serve(t, NewServer(defaultSystem(t), nil, nil))

	out, _, err := c.Evaluate(context.Background(), fuzzy.CrispInput{1, 0, 0.5, 0.5, 0})
	require.NoError(t, err)
	require.Equal(t, -0.5, out.Get(fuzzy.ForwardBackwards))
	require.True(t, math.IsNaN(out.Get(fuzzy.LeftRight)))
}

func TestEvaluateTrace_ReturnsFiredRules(t *testing.T) {
	c := serve(t, NewServer(defaultSystem(t), nil, nil))

	_, _, trace, err := c.EvaluateTrace(context.Background(), fuzzy.CrispInput{0, -1, -1, -1, 0})
	require.NoError(t, err)
	require.NotEmpty(t, trace)
	for _, f := range trace {
		require.Positive(t, f.Activation)
		require.NotEmpty(t, f.Rule)
	}
}

func TestEvaluate_NotConfigured(t *testing.T) {
	c := serve(t, NewServer(pipeline.NewSystem(nil), nil, nil))

	_, _, err := c.Evaluate(context.Background(), fuzzy.CrispInput{})
	require.Error(t, err)
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestEvaluate_WritesEvaluationLog(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	rec, err := store.NewRecord(ruleset.DefaultSource(), ruleset.YAML, "")
	require.NoError(t, err)
	require.NoError(t, s.CommitVersion(rec))
	p, err := rec.Pipeline()
	require.NoError(t, err)

	sys := pipeline.NewSystem(nil)
	sys.Swap(p)
	c := serve(t, NewServer(sys, nil, s.DB()))

	_, _, err = c.Evaluate(context.Background(), fuzzy.CrispInput{1, 0, 0.5, 0.5, 0})
	require.NoError(t, err)

	entries, err := logging.ListEvaluations(s.DB(), rec.VersionID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, logging.TriggerRPC, entries[0].TriggerType)
	require.Equal(t, logging.DecisionPartial, entries[0].Decision)
}

func TestEvaluate_BadRequest(t *testing.T) {
	srv := NewServer(defaultSystem(t), nil, nil)
	tests := []struct {
		name string
		req  map[string]any
	}{
		{"missing input", map[string]any{}},
		{"input not a list", map[string]any{"input": "fast"}},
		{"string element", map[string]any{"input": []any{0.1, "far"}}},
		{"too many values", map[string]any{"input": []any{0, 0, 0, 0, 0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := structpb.NewStruct(tt.req)
			require.NoError(t, err)
			_, err = srv.Evaluate(context.Background(), req)
			require.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestEvaluate_CancelledContext(t *testing.T) {
	srv := NewServer(defaultSystem(t), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := srv.Evaluate(ctx, encodeRequest(fuzzy.CrispInput{}, false))
	require.Equal(t, codes.Canceled, status.Code(err))
}

// #endregion rpc-tests

// #region codec-tests
func TestDecodeRequest_NullIsNaN(t *testing.T) {
	in, trace, err := decodeRequest(encodeRequest(fuzzy.CrispInput{math.NaN(), 0.5}, true))
	require.NoError(t, err)
	require.True(t, trace)
	require.True(t, math.IsNaN(in.Get(fuzzy.Speed)))
	require.Equal(t, 0.5, in.Get(fuzzy.ForwardDistance))
}

func TestDecodeResponse_MissingOutput(t *testing.T) {
	resp, err := structpb.NewStruct(map[string]any{"output": map[string]any{"ForwardBackwards": 1.0}})
	require.NoError(t, err)
	_, _, _, err = decodeResponse(resp)
	require.ErrorIs(t, err, fuzzy.ErrUnknownOutput)
}

// #endregion codec-tests
