package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essay-duet-api/internal/domain/service"
)

func TestRenderText(t *testing.T) {
	tests := []struct {
		name string
		n    service.Notification
		want string
	}{
		{
			name: "joined notice",
			n: service.Notification{
				Intent:    service.IntentJoinedNotice,
				Topic:     "The Old Lighthouse",
				ActorName: "Someone",
			},
			want: `Someone joined your essay "The Old Lighthouse". They will write the next part.`,
		},
		{
			name: "prompt write with opening",
			n: service.Notification{
				Intent:  service.IntentPromptWrite,
				Topic:   "The Old Lighthouse",
				Content: "it began at dusk",
			},
			want: `You joined "The Old Lighthouse". The story so far: "it began at dusk". It's your turn to write.`,
		},
		{
			name: "turn notice",
			n: service.Notification{
				Intent:    service.IntentTurnNotice,
				Topic:     "The Old Lighthouse",
				ActorName: "Bob",
				Content:   "the waves rose",
				WordCount: 3,
			},
			want: `Bob added 3 words to "The Old Lighthouse": "the waves rose". It's your turn now.`,
		},
		{
			name: "finish accepted",
			n: service.Notification{
				Intent: service.IntentFinishAccepted,
				Topic:  "The Old Lighthouse",
			},
			want: `Your essay "The Old Lighthouse" is complete. The document is ready for download.`,
		},
		{
			name: "finish declined",
			n: service.Notification{
				Intent:    service.IntentFinishDeclined,
				Topic:     "The Old Lighthouse",
				ActorName: "Alice",
			},
			want: `Alice wants to keep writing "The Old Lighthouse". The essay continues.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderText(tt.n))
		})
	}
}

func TestWebhookDeliver(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier(srv.URL, 5*time.Second)
	err := notifier.Deliver(context.Background(), service.Notification{
		Recipient: "creator",
		Intent:    service.IntentFinishOffer,
		EssayID:   "essay-1",
		Topic:     "The Old Lighthouse",
		ActorName: "Bob",
	})
	require.NoError(t, err)

	assert.Equal(t, "creator", got.Recipient)
	assert.Equal(t, string(service.IntentFinishOffer), got.Intent)
	assert.Equal(t, "essay-1", got.EssayID)
	assert.Contains(t, got.Text, "Bob suggests finishing")
}

func TestWebhookDeliverServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier(srv.URL, 5*time.Second)
	err := notifier.Deliver(context.Background(), service.Notification{
		Intent: service.IntentTurnNotice,
		Topic:  "The Old Lighthouse",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestLogNotifierAlwaysSucceeds(t *testing.T) {
	notifier := NewLogNotifier()
	err := notifier.Deliver(context.Background(), service.Notification{
		Intent: service.IntentJoinedNotice,
		Topic:  "The Old Lighthouse",
	})
	assert.NoError(t, err)
}
