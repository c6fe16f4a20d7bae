package grpcserver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rbindex/domain/rbtree"
	"rbindex/service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server adapts IndexService to gRPC.
type Server struct {
	svc *service.IndexService
}

func NewServer(svc *service.IndexService) *Server {
	return &Server{svc: svc}
}

// -------------------- Commands --------------------

func (s *Server) Insert(ctx context.Context, req *InsertRequest) (*InsertResponse, error) {
	seq, err := s.svc.Insert(req.Key, req.Value)
	if err != nil {
		return nil, toStatus(err)
	}
	return &InsertResponse{Seq: seq}, nil
}

func (s *Server) Remove(ctx context.Context, req *KeyRequest) (*RemoveResponse, error) {
	seq, err := s.svc.Remove(req.Key)
	if err != nil {
		return nil, toStatus(err)
	}
	return &RemoveResponse{Seq: seq}, nil
}

// -------------------- Queries --------------------

func (s *Server) Get(ctx context.Context, req *KeyRequest) (*GetResponse, error) {
	v, ok, err := s.svc.Get(req.Key)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetResponse{Value: v, Found: ok}, nil
}

func (s *Server) Glb(ctx context.Context, req *KeyRequest) (*BoundResponse, error) {
	e, ok, err := s.svc.Glb(req.Key)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BoundResponse{Key: e.Key, Value: e.Value, Found: ok}, nil
}

func (s *Server) Lub(ctx context.Context, req *KeyRequest) (*BoundResponse, error) {
	e, ok, err := s.svc.Lub(req.Key)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BoundResponse{Key: e.Key, Value: e.Value, Found: ok}, nil
}

func (s *Server) Stats(ctx context.Context, _ *StatsRequest) (*StatsResponse, error) {
	st := s.svc.Stats()
	return &StatsResponse{
		Keys:      st.Keys,
		Inserted:  st.Inserted,
		Low:       st.Low,
		High:      st.High,
		RootKey:   st.RootKey,
		Empty:     st.Empty,
		Balanced:  st.Balanced,
		ColorOK:   st.ColorOK,
		LinksOK:   st.LinksOK,
		LastEvent: st.LastEvent,
	}, nil
}

// -------------------- Errors --------------------

func toStatus(err error) error {
	switch {
	case errors.Is(err, rbtree.ErrOutOfBounds):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, service.ErrDuplicate):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, rbtree.ErrCorrupt):
		return status.Error(codes.DataLoss, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// -------------------- Interceptors --------------------

// LoggingInterceptor logs every call with its duration and status code.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = slog.Default()
	}
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		level := slog.LevelDebug
		if code != codes.OK {
			level = slog.LevelWarn
		}
		log.Log(ctx, level, "grpc call",
			"method", info.FullMethod,
			"code", code.String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}
