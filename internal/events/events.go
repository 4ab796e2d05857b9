package events

import (
	"Learnify/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectCoursePublished = "course.published"
	SubjectCourseEnrolled  = "course.enrolled"
	SubjectPostCreated     = "post.created"
	SubjectPostDeleted     = "post.deleted"
	SubjectUserFollowed    = "user.followed"
)

type CoursePublished struct {
	CourseID    string    `json:"course_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	AuthorID    string    `json:"author_id"`
	PublishedAt time.Time `json:"published_at"`
}

type CourseEnrolled struct {
	CourseID   string    `json:"course_id"`
	UserID     string    `json:"user_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

type PostCreated struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Caption   string    `json:"caption"`
	Hashtags  []string  `json:"hashtags"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type PostDeleted struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
}

type UserFollowed struct {
	FollowerID string `json:"follower_id"`
	FolloweeID string `json:"followee_id"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

type NatsPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNatsPublisher(nc *nats.Conn, prefix string) *NatsPublisher {
	return &NatsPublisher{nc: nc, prefix: prefix}
}

func (p *NatsPublisher) Publish(_ context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}
	msg := &nats.Msg{
		Subject: Subject(p.prefix, subject),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Content-Type", "application/json")
	return p.nc.PublishMsg(msg)
}

func (p *NatsPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

// Subject prepends the deployment prefix, if any.
func Subject(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Emit publishes best-effort: failures are logged and swallowed.
func Emit(ctx context.Context, p Publisher, log logger.Log, subject string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, payload); err != nil {
		log.ErrorErr("event publish failed", err, "subject", subject)
	}
}

// Connect dials NATS, or returns a NopPublisher when url is empty.
func Connect(url, prefix string, log logger.Log) (Publisher, func(), error) {
	if url == "" {
		log.Info("nats url is empty, domain events are disabled")
		return NopPublisher{}, func() {}, nil
	}
	nc, err := nats.Connect(url,
		nats.Name("learnify"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", logger.Err(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}
	p := NewNatsPublisher(nc, prefix)
	return p, p.Close, nil
}
