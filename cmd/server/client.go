package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"rbindex/api/grpcserver"

	"github.com/urfave/cli/v2"
)

func withClient(cctx *cli.Context, fn func(ctx context.Context, c *grpcserver.Client) (any, error)) error {
	c, err := grpcserver.Dial(cctx.String("addr"))
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cctx.Context, 10*time.Second)
	defer cancel()

	out, err := fn(ctx, c)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func keyArg(cctx *cli.Context) (int64, error) {
	if cctx.Args().Len() < 1 {
		return 0, fmt.Errorf("missing key argument")
	}
	return strconv.ParseInt(cctx.Args().First(), 10, 64)
}

func runInsert(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	value := []byte(cctx.Args().Get(1))
	return withClient(cctx, func(ctx context.Context, c *grpcserver.Client) (any, error) {
		return c.Insert(ctx, key, value)
	})
}

func runGet(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	return withClient(cctx, func(ctx context.Context, c *grpcserver.Client) (any, error) {
		return c.Get(ctx, key)
	})
}

func runRemove(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	return withClient(cctx, func(ctx context.Context, c *grpcserver.Client) (any, error) {
		return c.Remove(ctx, key)
	})
}

func runGlb(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	return withClient(cctx, func(ctx context.Context, c *grpcserver.Client) (any, error) {
		return c.Glb(ctx, key)
	})
}

func runLub(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	return withClient(cctx, func(ctx context.Context, c *grpcserver.Client) (any, error) {
		return c.Lub(ctx, key)
	})
}

func runStats(cctx *cli.Context) error {
	return withClient(cctx, func(ctx context.Context, c *grpcserver.Client) (any, error) {
		return c.Stats(ctx)
	})
}
