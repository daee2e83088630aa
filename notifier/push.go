package notifier

import (
	"context"
	"errors"

	gcm "github.com/google/go-gcm"
	"github.com/rs/zerolog/log"
)

const (
	GcmMaxTTL = 2419200 // 4 weeks, in seconds
)

var ErrNoAPIKey = errors.New("gcm api key not configured")

// Push is one message to one device.
type Push struct {
	UserID      int64
	Token       string
	Title       string
	Body        string
	CollapseKey string
	TTL         uint
}

type Pusher interface {
	Push(ctx context.Context, p *Push) error
}

type PusherFunc func(ctx context.Context, p *Push) error

func (f PusherFunc) Push(ctx context.Context, p *Push) error {
	return f(ctx, p)
}

// GcmPusher delivers pushes through the GCM HTTP API.
type GcmPusher struct {
	apiKey string
}

func NewGcmPusher(apiKey string) *GcmPusher {
	return &GcmPusher{apiKey: apiKey}
}

func (g *GcmPusher) Push(ctx context.Context, p *Push) error {

	if g.apiKey == "" {
		return ErrNoAPIKey
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	ttl := p.TTL
	if ttl == 0 || ttl > GcmMaxTTL {
		ttl = GcmMaxTTL
	}

	message := gcm.HttpMessage{
		To:          p.Token,
		TimeToLive:  &ttl,
		Priority:    "high",
		CollapseKey: p.CollapseKey,
		Notification: &gcm.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		ContentAvailable: true,
	}

	response, err := gcm.SendHttp(g.apiKey, message)
	if err != nil {
		if response != nil {
			log.Error().Err(err).Int64("user", p.UserID).Str("gcm_error", response.Error).Msg("gcm push failed")
		}
		return err
	}

	log.Debug().Int64("user", p.UserID).Msg("gcm push sent")
	return nil
}

// LogPusher only logs. Used when no GCM key is configured.
type LogPusher struct{}

func (LogPusher) Push(ctx context.Context, p *Push) error {
	log.Info().Int64("user", p.UserID).Str("title", p.Title).Str("body", p.Body).Msg("push")
	return nil
}
