package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRecordsMessages(t *testing.T) {
	p := New()

	id, err := p.Publish(context.Background(), "image-extraction", map[string]any{"entity_id": 1})
	require.NoError(t, err)
	assert.Equal(t, "memory-1", id)

	id, err = p.Publish(context.Background(), "image-extraction", map[string]any{"entity_id": 2})
	require.NoError(t, err)
	assert.Equal(t, "memory-2", id)

	msgs := p.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "image-extraction", msgs[0].Topic)
}

func TestMessagesReturnsCopy(t *testing.T) {
	p := New()
	_, err := p.Publish(context.Background(), "t", "payload")
	require.NoError(t, err)

	msgs := p.Messages()
	msgs[0].Topic = "mutated"
	assert.Equal(t, "t", p.Messages()[0].Topic)
}
