package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
)

var (
	_ Publisher = NoopPublisher{}
	_ Publisher = (*NATSPublisher)(nil)
)

func TestDocumentEvent_JSON(t *testing.T) {
	ev := DocumentEvent{
		RunID:     "r1",
		Source:    "video/a.mdx",
		Output:    "video/a_ios.md",
		Platform:  "ios",
		Timestamp: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "r1", decoded["run_id"])
	assert.Equal(t, "video/a_ios.md", decoded["output"])
	assert.Equal(t, "2026-10-17T08:00:00Z", decoded["timestamp"])
}

func TestRunEvent_OmitsEmptyCommit(t *testing.T) {
	data, err := json.Marshal(RunEvent{RunID: "r1", Converted: 2})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "commit")
	assert.Contains(t, string(data), `"converted":2`)
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "mdx2md.export.document", DocumentSubject("mdx2md.export"))
	assert.Equal(t, "mdx2md.export.run", RunSubject("mdx2md.export"))
}

func TestNoopPublisher(t *testing.T) {
	p := NoopPublisher{}
	require.NoError(t, p.PublishDocument(context.Background(), DocumentEvent{}))
	require.NoError(t, p.PublishRun(context.Background(), RunEvent{}))
	require.NoError(t, p.Close())
}

func TestNewNATSPublisher_RequiresURL(t *testing.T) {
	_, err := NewNATSPublisher(context.Background(), NATSConfig{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestNewNATSPublisher_UnreachableServer(t *testing.T) {
	_, err := NewNATSPublisher(context.Background(), NATSConfig{
		URL:     "nats://127.0.0.1:1",
		Subject: "mdx2md.export",
		Stream:  "MDX2MD",
		Timeout: 200 * time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNetwork))
}
