package transport

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/logging"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/metrics"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/pipeline"
)

// #region server
// Server evaluates crisp inputs against the active pipeline of a System.
type Server struct {
	sys *pipeline.System
	log *zap.Logger
	db  *sql.DB
}

// NewServer wraps sys. When db is non-nil every call is written to the
// evaluation log. log may be nil.
func NewServer(sys *pipeline.System, log *zap.Logger, db *sql.DB) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{sys: sys, log: log, db: db}
}

// Register installs srv on r.
func Register(r grpc.ServiceRegistrar, srv *Server) {
	r.RegisterService(&ServiceDesc, srv)
}

// Evaluate implements InferenceServer.
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.evaluate(ctx, req)
	metrics.RPCEvaluations.WithLabelValues(status.Code(err).String()).Inc()
	return resp, err
}

func (s *Server) evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	in, trace, err := decodeRequest(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}

	res, err := s.sys.EvaluateTrace(in)
	if errors.Is(err, pipeline.ErrNotConfigured) {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "evaluate: %v", err)
	}

	if s.db != nil {
		entry := logging.EvaluationEntry{
			VersionID:   res.Version,
			TriggerType: logging.TriggerRPC,
			Inputs:      res.Input,
			Outputs:     res.Output,
			Firings:     res.Trace,
		}
		if err := logging.LogEvaluation(s.db, entry); err != nil {
			s.log.Warn("evaluation log write failed", zap.Error(err))
		}
	}

	return encodeResponse(res.Output, res.Version, res.Trace.Fired(), trace), nil
}

// #endregion server
