package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CalendarPubSub broadcasts calendar regeneration so other replicas can
// drop their local caches.
type CalendarPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewCalendarPubSub(rdb *redis.Client) *CalendarPubSub {
	return &CalendarPubSub{
		rdb:     rdb,
		channel: ChannelCalendarChanged(),
	}
}

type calendarChangedMsg struct {
	Type       string   `json:"type"`
	PropertyID string   `json:"property_id"`
	Months     []string `json:"months"`
	TsUnix     int64    `json:"ts_unix"`
}

func (p *CalendarPubSub) PublishCalendarChanged(ctx context.Context, propertyID string, months []string) error {
	msg := calendarChangedMsg{
		Type:       "calendar_changed",
		PropertyID: propertyID,
		Months:     months,
		TsUnix:     time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *CalendarPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, propertyID string, months []string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg calendarChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				continue
			}
			handler(ctx, msg.PropertyID, msg.Months)
		}
	}
}
