package main

import (
	"context"
	"time"

	"github.com/matst80/slask-listings/pkg/client"
)

func waitIdle(ctx context.Context, c *client.Controller) (client.View, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		if v := c.View(); v.State == client.StateIdle {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return c.View(), ctx.Err()
		case <-ticker.C:
		}
	}
}
