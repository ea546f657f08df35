package mypubsub

import "context"

var New func(c context.Context) (PubSub, func(), error)

type PubSub interface {
	CreateTopic(c context.Context, topic string) error
	Publish(c context.Context, topic string, data string) error
}
