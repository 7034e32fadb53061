package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/probe/pkg/config"
	"github.com/panbanda/probe/pkg/generator"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/source"
)

type fakeOllama struct {
	mu       sync.Mutex
	requests []generateRequest
	status   int
	response string
}

func (f *fakeOllama) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"name":"phi:latest"},{"name":"llama3:8b"}]}`))
	})
	mux.HandleFunc("POST /api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.requests = append(f.requests, req)
		status := f.status
		f.mu.Unlock()

		if status != 0 {
			http.Error(w, "boom", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"model": req.Model, "response": f.response, "done": true})
	})
	return mux
}

func newServer(t *testing.T, f *fakeOllama) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Available(t *testing.T) {
	srv := newServer(t, &fakeOllama{})
	c := New(WithBaseURL(srv.URL))

	assert.True(t, c.Available(context.Background()))
}

func TestClient_AvailableServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(WithBaseURL(url))
	assert.False(t, c.Available(context.Background()))
}

func TestClient_AvailableErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	assert.False(t, New(WithBaseURL(srv.URL)).Available(context.Background()))
}

func TestClient_AvailableTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	start := time.Now()
	assert.False(t, New(WithBaseURL(srv.URL)).Available(context.Background()))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_Models(t *testing.T) {
	srv := newServer(t, &fakeOllama{})

	models, err := New(WithBaseURL(srv.URL)).Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"phi:latest", "llama3:8b"}, models)
}

func TestClient_Generate(t *testing.T) {
	fake := &fakeOllama{response: "def test_add():\n    assert add(2, 3) == 5\n"}
	srv := newServer(t, fake)
	c := New(WithBaseURL(srv.URL), WithModel("llama3"))

	out, err := c.Generate(context.Background(), "write tests", generator.ModelOptions{Temperature: 0.3, MaxTokens: 800})
	require.NoError(t, err)
	assert.Equal(t, fake.response, out)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, "llama3", req.Model)
	assert.Equal(t, "write tests", req.Prompt)
	assert.False(t, req.Stream)
	assert.Equal(t, 0.3, req.Options.Temperature)
	assert.Equal(t, 800, req.Options.NumPredict)
}

func TestClient_GenerateErrorStatus(t *testing.T) {
	srv := newServer(t, &fakeOllama{status: http.StatusInternalServerError})

	_, err := New(WithBaseURL(srv.URL)).Generate(context.Background(), "p", generator.DefaultModelOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_GenerateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(WithBaseURL(url)).Generate(context.Background(), "p", generator.DefaultModelOptions())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_GenerateCanceled(t *testing.T) {
	srv := newServer(t, &fakeOllama{response: "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithBaseURL(srv.URL)).Generate(ctx, "p", generator.DefaultModelOptions())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().LLM
	cfg.Model = "codellama"
	cfg.URL = "http://127.0.0.1:9"

	c := NewFromConfig(cfg, nil)
	assert.Equal(t, "codellama", c.Model())
	assert.Equal(t, "http://127.0.0.1:9", c.http.BaseURL)
	assert.Equal(t, 120*time.Second, c.http.GetClient().Timeout)
}

func TestNewDefaults(t *testing.T) {
	c := New()
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, DefaultBaseURL, c.http.BaseURL)
}

func TestHclogAdapter(t *testing.T) {
	var buf bytes.Buffer
	log := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Trace, DisableTime: true})
	a := NewHclogAdapter(log).(*HclogAdapter)

	a.Errorf("e %d", 1)
	a.Warnf("w %s", "x")
	a.Infof("i")
	a.Debugf("d")

	out := buf.String()
	assert.Contains(t, out, "[ERROR] e 1")
	assert.Contains(t, out, "[WARN]  w x")
	assert.Contains(t, out, "[INFO]  i")
	assert.Contains(t, out, "[DEBUG] d")
}

func TestClient_WorksWithGenerator(t *testing.T) {
	fake := &fakeOllama{response: "```java\nimport org.junit.jupiter.api.Test;\n\nclass CalcTest {\n    @Test\n    void adds() {\n        assertEquals(5, new Calc().add(2, 3));\n    }\n}\n```"}
	srv := newServer(t, fake)

	g := generator.New(generator.WithTextGenerator(New(WithBaseURL(srv.URL))))
	src := "public class Calc {\n    public int add(int a, int b) {\n        return a + b;\n    }\n}\n"
	d := g.Generate(context.Background(), source.New(src, "Calc.java"))

	assert.Equal(t, models.OriginModel, d.Origin)
	assert.Contains(t, d.Content, "assertEquals(5, new Calc().add(2, 3));")
	assert.NotContains(t, d.Content, "```")
	require.Len(t, fake.requests, 1)
	assert.Contains(t, fake.requests[0].Prompt, "public class Calc")
}
