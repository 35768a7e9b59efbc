package usecase

import (
	"context"

	"MarketBoard/internal/domain/models"
	drepo "MarketBoard/internal/domain/repository"
	mid "MarketBoard/internal/middleware"
	"MarketBoard/pkg/logger"
)

// TickCollector consumes the live exchange stream between polls and folds
// each row into the refresher's staged dataset.
type TickCollector struct {
	stream    drepo.TickStream
	pipe      *mid.TickPipeline
	refresher *Refresher
	log       *logger.Logger
}

// NewTickCollector creates a collector over an optional live stream. pipe
// may be nil, in which case ticks go straight to the refresher.
func NewTickCollector(stream drepo.TickStream, pipe *mid.TickPipeline, refresher *Refresher, log *logger.Logger) *TickCollector {
	return &TickCollector{stream: stream, pipe: pipe, refresher: refresher, log: log}
}

// IsConnected reports stream connectivity.
func (c *TickCollector) IsConnected() bool {
	return c.stream != nil && c.stream.IsConnected()
}

// Start connects and begins consuming in the background.
func (c *TickCollector) Start(ctx context.Context) error {
	if c.stream == nil {
		return nil
	}
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *TickCollector) consume(ctx context.Context, tickCh <-chan models.RawTick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.log.Warn("tick stream error, reconnecting", logger.Error(err))
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.log.Error("tick stream reconnect failed", logger.Error(rerr))
				}
			}
		case tick, ok := <-tickCh:
			if !ok {
				return
			}
			if c.pipe != nil {
				if err := c.pipe.Process(tick); err != nil {
					c.log.Debug("tick rejected", logger.Error(err))
				}
			} else {
				c.refresher.ApplyTick(tick)
			}
		}
	}
}

// Stop closes the stream.
func (c *TickCollector) Stop() error {
	if c.stream == nil {
		return nil
	}
	return c.stream.Close()
}
