package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/factoryboard/internal/config"
)

func TestSendTextMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	c := NewClient(config.WhatsAppConfig{
		AccessToken:   "tok",
		PhoneNumberID: "12345",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
	})

	resp, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "224600000000", Body: "digest"})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.1", resp.Messages[0].ID)
	assert.Equal(t, "/v20.0/12345/messages", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "224600000000", gotBody["to"])
	assert.Equal(t, "whatsapp", gotBody["messaging_product"])
	assert.Equal(t, map[string]any{"body": "digest"}, gotBody["text"])
}

func TestSendTextMessage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad token","code":190}}`))
	}))
	defer srv.Close()

	c := NewClient(config.WhatsAppConfig{BaseURL: srv.URL, APIVersion: "v20.0", PhoneNumberID: "1"})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=190")
	assert.Contains(t, err.Error(), "bad token")
}

func TestSendTextMessage_RequiresRecipient(t *testing.T) {
	c := NewClient(config.WhatsAppConfig{BaseURL: "http://127.0.0.1:1", APIVersion: "v20.0"})
	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{Body: "y"})
	assert.Error(t, err)
}
