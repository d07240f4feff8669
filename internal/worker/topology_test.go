package worker_test

import (
	"errors"
	"testing"

	"CareNotifier/internal/worker"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type declaredQueue struct {
	name string
	args amqp091.Table
}

// fakeDeclarer запоминает объявленную топологию.
type fakeDeclarer struct {
	exchanges []string
	queues    []declaredQueue
	bindings  []string
	failQueue string
}

func (f *fakeDeclarer) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool,
	args amqp091.Table) error {
	f.exchanges = append(f.exchanges, name+":"+kind)
	return nil
}

func (f *fakeDeclarer) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool,
	args amqp091.Table) (amqp091.Queue, error) {
	if name == f.failQueue {
		return amqp091.Queue{}, errors.New("access refused")
	}
	f.queues = append(f.queues, declaredQueue{name: name, args: args})
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeDeclarer) QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error {
	f.bindings = append(f.bindings, exchange+"->"+key+"->"+name)
	return nil
}

func TestTopology_Declare_WithDeadLetter(t *testing.T) {
	ch := &fakeDeclarer{}
	topology := worker.Topology{
		Exchange:   "CareNotifier",
		Queue:      "notification",
		RoutingKey: "notification",
		DeadLetter: "notification.dlq",
	}

	require.NoError(t, topology.Declare(ch))

	assert.Equal(t, []string{"CareNotifier:direct"}, ch.exchanges)
	require.Len(t, ch.queues, 2)
	assert.Equal(t, "notification.dlq", ch.queues[0].name)
	assert.Equal(t, "notification", ch.queues[1].name)
	assert.Equal(t, "notification.dlq", ch.queues[1].args["x-dead-letter-routing-key"])
	assert.Equal(t, []string{"CareNotifier->notification->notification"}, ch.bindings)
}

func TestTopology_Declare_WithoutDeadLetter(t *testing.T) {
	ch := &fakeDeclarer{}

	require.NoError(t, worker.Topology{Exchange: "ex", Queue: "q", RoutingKey: "k"}.Declare(ch))

	require.Len(t, ch.queues, 1)
	assert.Nil(t, ch.queues[0].args)
}

func TestTopology_Declare_Error(t *testing.T) {
	ch := &fakeDeclarer{failQueue: "q"}

	err := worker.Topology{Exchange: "ex", Queue: "q", RoutingKey: "k"}.Declare(ch)

	assert.ErrorContains(t, err, "failed to declare queue q")
	assert.Empty(t, ch.bindings)
}
