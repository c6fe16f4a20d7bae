package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls a remote rbindex.Index service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target without TLS. Extra options are appended after
// the defaults.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Insert(ctx context.Context, key int64, value []byte) (*InsertResponse, error) {
	out := new(InsertResponse)
	err := c.conn.Invoke(ctx, fullMethod("Insert"), &InsertRequest{Key: key, Value: value}, out)
	return out, err
}

func (c *Client) Get(ctx context.Context, key int64) (*GetResponse, error) {
	out := new(GetResponse)
	err := c.conn.Invoke(ctx, fullMethod("Get"), &KeyRequest{Key: key}, out)
	return out, err
}

func (c *Client) Remove(ctx context.Context, key int64) (*RemoveResponse, error) {
	out := new(RemoveResponse)
	err := c.conn.Invoke(ctx, fullMethod("Remove"), &KeyRequest{Key: key}, out)
	return out, err
}

func (c *Client) Glb(ctx context.Context, key int64) (*BoundResponse, error) {
	out := new(BoundResponse)
	err := c.conn.Invoke(ctx, fullMethod("Glb"), &KeyRequest{Key: key}, out)
	return out, err
}

func (c *Client) Lub(ctx context.Context, key int64) (*BoundResponse, error) {
	out := new(BoundResponse)
	err := c.conn.Invoke(ctx, fullMethod("Lub"), &KeyRequest{Key: key}, out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	out := new(StatsResponse)
	err := c.conn.Invoke(ctx, fullMethod("Stats"), &StatsRequest{}, out)
	return out, err
}
