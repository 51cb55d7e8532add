package server

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cartridge/pacman/internal/actor"
	"github.com/cartridge/pacman/internal/game"
	"github.com/cartridge/pacman/internal/policy"
	"github.com/cartridge/pacman/internal/storage"
)

const serviceName = "pacman.agent.v1.AgentService"

// AgentServer is the server API for the AgentService.
type AgentServer interface {
	StartEpisode(context.Context, *StartEpisodeRequest) (*StartEpisodeResponse, error)
	Act(context.Context, *ActRequest) (*ActResponse, error)
	EndEpisode(context.Context, *EndEpisodeRequest) (*EndEpisodeResponse, error)
	Trace(context.Context, *TraceRequest) (*TraceResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AgentServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("StartEpisode", AgentServer.StartEpisode),
		unary("Act", AgentServer.Act),
		unary("EndEpisode", AgentServer.EndEpisode),
		unary("Trace", AgentServer.Trace),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pacman/agent/v1/agent.proto",
}

func unary[Req, Resp any](method string, call func(AgentServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + serviceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AgentServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AgentServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// NewServer creates a gRPC server that speaks the JSON codec.
func NewServer(logger zerolog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ForceServerCodec(Codec{}),
		grpc.UnaryInterceptor(LoggingInterceptor(logger)),
	}, opts...)
	return grpc.NewServer(opts...)
}

// Register attaches an AgentServer implementation to s.
func Register(s *grpc.Server, srv AgentServer) {
	s.RegisterService(&serviceDesc, srv)
}

// Service implements AgentServer on top of an actor
type Service struct {
	actor *actor.Actor
}

// NewService creates a new Service
func NewService(a *actor.Actor) *Service {
	return &Service{actor: a}
}

// StartEpisode creates a fresh agent for a new game
func (s *Service) StartEpisode(ctx context.Context, req *StartEpisodeRequest) (*StartEpisodeResponse, error) {
	id, agent, err := s.actor.StartEpisode(ctx, req.Agent)
	if err != nil {
		return nil, toStatus(err)
	}
	return &StartEpisodeResponse{EpisodeID: id, Agent: agent}, nil
}

// Act returns the agent's move for one turn
func (s *Service) Act(ctx context.Context, req *ActRequest) (*ActResponse, error) {
	if req.EpisodeID == "" {
		return nil, status.Error(codes.InvalidArgument, "episode_id is required")
	}
	snap, err := req.Snapshot.toGame()
	if err != nil {
		return nil, toStatus(err)
	}

	move, err := s.actor.Act(ctx, req.EpisodeID, snap)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ActResponse{
		Direction: move.Direction,
		Mode:      string(move.Mode),
		Step:      move.Step,
		Fallback:  move.Fallback,
	}, nil
}

// EndEpisode releases the agent of a finished game
func (s *Service) EndEpisode(ctx context.Context, req *EndEpisodeRequest) (*EndEpisodeResponse, error) {
	steps, err := s.actor.EndEpisode(ctx, req.EpisodeID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &EndEpisodeResponse{EpisodeID: req.EpisodeID, Steps: steps}, nil
}

// Trace returns the recorded decisions of an episode
func (s *Service) Trace(ctx context.Context, req *TraceRequest) (*TraceResponse, error) {
	transitions, err := s.actor.Trace(ctx, req.EpisodeID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TraceResponse{Transitions: transitions}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, actor.ErrEpisodeNotFound), errors.Is(err, storage.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, policy.ErrUnknownAgent), errors.Is(err, policy.ErrNoLegalMoves), errors.Is(err, errInvalidSnapshot):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, actor.ErrTooManyEpisodes):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, game.ErrIllegalMove), errors.Is(err, policy.ErrGoalsExhausted):
		return status.Error(codes.Internal, err.Error())
	default:
		return status.Error(codes.Unknown, err.Error())
	}
}

// LoggingInterceptor logs gRPC requests
func LoggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		event := logger.Debug()
		if err != nil {
			event = logger.Warn().Err(err)
		}
		event.
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("duration", time.Since(start)).
			Msg("gRPC request")

		return resp, err
	}
}
