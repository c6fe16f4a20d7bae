package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncProducerPublish(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != "event" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := WrapSyncProducer(mock, "rbindex.events")
	require.NoError(t, p.Publish(context.Background(), []byte("k"), []byte("event")))
	require.NoError(t, p.Close())
}

func TestSyncProducerPropagatesFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := WrapSyncProducer(mock, "rbindex.events")
	err := p.Publish(context.Background(), nil, []byte("event"))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestSyncProducerHonorsCanceledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	p := WrapSyncProducer(mock, "rbindex.events")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, nil, []byte("event")), context.Canceled)
	require.NoError(t, p.Close())
}
