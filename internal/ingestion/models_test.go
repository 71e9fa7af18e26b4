package ingestion

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Timestamp
		wantErr bool
	}{
		{name: "number", input: `1700000000`, want: 1700000000},
		{name: "numeric string", input: `"1700000000"`, want: 1700000000},
		{name: "long", input: `{"low":1700000000,"high":0,"unsigned":true}`, want: 1700000000},
		{name: "long with high bits", input: `{"low":-1,"high":1}`, want: 1<<33 - 1},
		{name: "null", input: `null`, want: 0},
		{name: "bad string", input: `"yesterday"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ts)
		})
	}
}

func TestTimestamp_Time(t *testing.T) {
	assert.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), Timestamp(1700000000).Time())
}

const mixedBatch = `{
	"type": "notify",
	"messages": [
		{
			"key": {"remoteJid": "919876543210@s.whatsapp.net", "fromMe": false, "id": "A1"},
			"pushName": "Ash",
			"message": {"conversation": "hello"},
			"messageTimestamp": {"low": 1700000000, "high": 0, "unsigned": true}
		},
		{
			"key": {"remoteJid": "919123456780@s.whatsapp.net", "fromMe": "no", "id": "A2"},
			"pushName": "Ravi",
			"message": {"conversation": "hi"},
			"messageTimestamp": 1700000000
		},
		42
	]
}`

func TestNotificationBatch_UnmarshalJSONIsolatesBadEvents(t *testing.T) {
	var batch NotificationBatch
	require.NoError(t, json.Unmarshal([]byte(mixedBatch), &batch))

	assert.True(t, batch.IsLive())
	require.Len(t, batch.Messages, 3)
	assert.Equal(t, "919876543210@s.whatsapp.net", batch.Messages[0].RemoteJid())
	assert.Equal(t, Timestamp(1700000000), batch.Messages[0].MessageTimestamp)

	for _, i := range []int{1, 2} {
		_, err := NewNormalizer().Normalize(batch.Messages[i])
		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, i, decodeErr.Index)
		assert.True(t, IsMalformed(err))
	}

	pub := &spyPublisher{}
	report := newTestCoordinator(t, pub).Ingest(context.Background(), batch)
	assert.Equal(t, 1, report.Published)
	assert.Equal(t, 2, report.Malformed)
	require.Len(t, pub.Published(), 1)
	assert.Equal(t, "Asha", pub.Published()[0].ParticipantName)
}

func TestNotificationBatch_UnmarshalJSONRejectsBadEnvelope(t *testing.T) {
	var batch NotificationBatch
	assert.Error(t, json.Unmarshal([]byte(`{"type":"notify","messages":"nope"}`), &batch))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &batch))
}
