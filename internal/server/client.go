package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client is the engine-side handle on an AgentService.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to an AgentService at target.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) StartEpisode(ctx context.Context, in *StartEpisodeRequest) (*StartEpisodeResponse, error) {
	out := new(StartEpisodeResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/StartEpisode", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Act(ctx context.Context, in *ActRequest) (*ActResponse, error) {
	out := new(ActResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/Act", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) EndEpisode(ctx context.Context, in *EndEpisodeRequest) (*EndEpisodeResponse, error) {
	out := new(EndEpisodeResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/EndEpisode", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Trace(ctx context.Context, in *TraceRequest) (*TraceResponse, error) {
	out := new(TraceResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/Trace", in, out); err != nil {
		return nil, err
	}
	return out, nil
}
