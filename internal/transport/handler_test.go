package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-relay/internal/ingestion"
	"whatsapp-relay/internal/logger"
)

func setupRouter(q *Queue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(q, logger.NopLogger()).RegisterRoutes(r)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const liveBatch = `{
	"type": "notify",
	"messages": [{
		"key": {"remoteJid": "919876543210@s.whatsapp.net", "fromMe": false, "id": "3EB0"},
		"pushName": "Ash",
		"message": {"extendedTextMessage": {"text": "see you at 5"}},
		"messageTimestamp": 1700000000
	}]
}`

func TestPostNotifications_Accepted(t *testing.T) {
	q := NewQueue(1)
	w := post(setupRouter(q), liveBatch)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp AcceptedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.BatchID)
	assert.Equal(t, 1, resp.Events)

	batch := <-q.Batches()
	assert.Equal(t, resp.BatchID, batch.BatchID)
	assert.True(t, batch.IsLive())
	require.Len(t, batch.Messages, 1)

	ev := batch.Messages[0]
	assert.Equal(t, "919876543210@s.whatsapp.net", ev.RemoteJid())
	assert.Equal(t, "3EB0", ev.MessageID())
	require.NotNil(t, ev.Key.FromMe)
	assert.False(t, *ev.Key.FromMe)
	assert.Equal(t, "see you at 5", *ev.Message.ExtendedTextMessage.Text)
	assert.Nil(t, ev.Message.Conversation)
}

func TestPostNotifications_MalformedJSON(t *testing.T) {
	q := NewQueue(1)
	w := post(setupRouter(q), `{"type": "notify", "messages": [`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.Zero(t, q.Len())
}

func TestPostNotifications_QueueFull(t *testing.T) {
	q := NewQueue(1)
	r := setupRouter(q)

	require.Equal(t, http.StatusAccepted, post(r, liveBatch).Code)

	w := post(r, liveBatch)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "queue_full")
}

func TestPostNotifications_QueueClosed(t *testing.T) {
	q := NewQueue(1)
	q.Close()

	w := post(setupRouter(q), liveBatch)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "shutting_down")
}

func TestPostNotifications_BadEventKeepsSiblings(t *testing.T) {
	q := NewQueue(1)
	w := post(setupRouter(q), `{
		"type": "notify",
		"messages": [
			{
				"key": {"remoteJid": "919876543210@s.whatsapp.net", "fromMe": false, "id": "3EB0"},
				"pushName": "Ash",
				"message": {"conversation": "hello"},
				"messageTimestamp": {"low": 1700000000, "high": 0, "unsigned": true}
			},
			{
				"key": {"remoteJid": "919123456780@s.whatsapp.net", "fromMe": "yes", "id": "3EB1"},
				"pushName": "Ravi",
				"message": {"conversation": "hi"},
				"messageTimestamp": 1700000000
			}
		]
	}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	batch := <-q.Batches()
	require.Len(t, batch.Messages, 2)

	msg, err := ingestion.NewNormalizer().Normalize(batch.Messages[0])
	require.NoError(t, err)
	assert.Equal(t, "9876543210", msg.ParticipantMobileNumber)
	assert.Equal(t, int64(1700000000), msg.SentAt.Unix())

	_, err = ingestion.NewNormalizer().Normalize(batch.Messages[1])
	assert.True(t, ingestion.IsMalformed(err))
}
