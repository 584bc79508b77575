package classifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newClient(endpoint string) *ToxicityClient {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewToxicityClient(endpoint, 0.7, time.Second, log)
}

func predictionsBody(preds []Prediction) []byte {
	raw, _ := json.Marshal([][]Prediction{preds})
	return raw
}

func Test_Classify_flags_offensive_label_above_threshold(t *testing.T) {
	req := require.New(t)
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		req.JSONEq(`{"inputs":"you suck"}`, string(body))
		req.Equal("application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write(predictionsBody([]Prediction{
			{Label: "toxic", Score: 0.91},
			{Label: "insult", Score: 0.12},
		}))
	})

	blocked, err := newClient(server.URL).Classify(context.Background(), "you suck")
	req.NoError(err)
	req.True(blocked)
}

func Test_Classify_labels_are_case_insensitive(t *testing.T) {
	req := require.New(t)
	server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(predictionsBody([]Prediction{{Label: "TOXIC", Score: 0.99}}))
	})

	blocked, err := newClient(server.URL).Classify(context.Background(), "whatever")
	req.NoError(err)
	req.True(blocked)
}

func Test_Classify_ignores_scores_below_threshold(t *testing.T) {
	req := require.New(t)
	server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(predictionsBody([]Prediction{
			{Label: "toxic", Score: 0.69},
			{Label: "threat", Score: 0.5},
		}))
	})

	blocked, err := newClient(server.URL).Classify(context.Background(), "whatever")
	req.NoError(err)
	req.False(blocked)
}

func Test_Classify_ignores_unknown_labels(t *testing.T) {
	req := require.New(t)
	server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(predictionsBody([]Prediction{{Label: "positive", Score: 0.99}}))
	})

	blocked, err := newClient(server.URL).Classify(context.Background(), "whatever")
	req.NoError(err)
	req.False(blocked)
}

func Test_Classify_returns_error_on_server_failure(t *testing.T) {
	req := require.New(t)
	server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	blocked, err := newClient(server.URL).Classify(context.Background(), "whatever")
	req.Error(err)
	req.False(blocked)
}

func Test_Classify_returns_error_on_malformed_body(t *testing.T) {
	req := require.New(t)
	server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	})

	blocked, err := newClient(server.URL).Classify(context.Background(), "whatever")
	req.Error(err)
	req.False(blocked)
}

func Test_Classify_returns_error_when_unreachable(t *testing.T) {
	req := require.New(t)

	blocked, err := newClient("http://127.0.0.1:1").Classify(context.Background(), "whatever")
	req.Error(err)
	req.False(blocked)
}

func Test_Classify_empty_prediction_batch_is_clean(t *testing.T) {
	req := require.New(t)
	server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	blocked, err := newClient(server.URL).Classify(context.Background(), "whatever")
	req.NoError(err)
	req.False(blocked)
}
