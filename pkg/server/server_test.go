package server

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/ask"
	"github.com/tucommenceapousser/tutodiy/pkg/catalog"
	"github.com/tucommenceapousser/tutodiy/pkg/enrich"
	"github.com/tucommenceapousser/tutodiy/pkg/llm"
)

type countingEnricher struct {
	calls atomic.Int32
	fn    func(steps []string) []models.Artifact
}

func (e *countingEnricher) Enrich(ctx context.Context, steps []string) []models.Artifact {
	e.calls.Add(1)
	if e.fn != nil {
		return e.fn(steps)
	}
	out := make([]models.Artifact, len(steps))
	for i := range steps {
		out[i] = models.ImageArtifact("https://img.example/" + url.PathEscape(steps[i]) + ".png")
	}
	return out
}

type stubAsker struct {
	questions []string
}

func (a *stubAsker) Answer(ctx context.Context, q string) string {
	a.questions = append(a.questions, q)
	return "réponse à " + q
}

func testCatalog(t *testing.T) *catalog.Memory {
	t.Helper()
	cat, err := catalog.NewMemory(
		models.Tutorial{
			ID:          "1",
			Title:       "Fabriquer un électroaimant",
			Description: "Un aimant qui s'allume et s'éteint.",
			Steps:       []string{"Prenez un clou", "Enroulez le fil", "Reliez la pile"},
		},
		models.Tutorial{ID: "vide", Title: "Tutoriel vide"},
	)
	require.NoError(t, err)
	return cat
}

func newTestServer(t *testing.T, enr Enricher, asker Asker, opts ...Option) *httptest.Server {
	t.Helper()
	s, err := New(testCatalog(t), enr, asker, opts...)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestTutorial_UnknownIDIs404WithoutEnrichment(t *testing.T) {
	enr := &countingEnricher{}
	srv := newTestServer(t, enr, &stubAsker{})

	resp, body := get(t, srv.URL+"/tutorial/999")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Tutoriel introuvable.")
	assert.Zero(t, enr.calls.Load())
}

func TestTutorial_RendersStepsWithAlignedArtifacts(t *testing.T) {
	enr := &countingEnricher{}
	srv := newTestServer(t, enr, &stubAsker{})

	resp, body := get(t, srv.URL+"/tutorial/1")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, enr.calls.Load())
	assert.Contains(t, body, "Fabriquer un électroaimant")

	first := strings.Index(body, "Prenez un clou")
	firstImg := strings.Index(body, "https://img.example/Prenez%20un%20clou.png")
	second := strings.Index(body, "Enroulez le fil")
	secondImg := strings.Index(body, "https://img.example/Enroulez%20le%20fil.png")
	require.True(t, first >= 0 && firstImg >= 0 && second >= 0 && secondImg >= 0, body)
	assert.True(t, first < firstImg && firstImg < second && second < secondImg)
	assert.Contains(t, body, `id="etape-3"`)
}

func TestTutorial_SentinelsRenderPlaceholders(t *testing.T) {
	enr := &countingEnricher{fn: func(steps []string) []models.Artifact {
		out := make([]models.Artifact, len(steps))
		for i := range out {
			out[i] = models.Unavailable()
		}
		return out
	}}
	srv := newTestServer(t, enr, &stubAsker{})

	resp, body := get(t, srv.URL+"/tutorial/1")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, strings.Count(body, "Illustration indisponible."))
}

func TestTutorial_TextArtifactShowsSource(t *testing.T) {
	enr := &countingEnricher{fn: func(steps []string) []models.Artifact {
		out := make([]models.Artifact, len(steps))
		for i := range out {
			out[i] = models.TextArtifact("Passage "+steps[i], "https://fr.example.com/guide")
		}
		return out
	}}
	srv := newTestServer(t, enr, &stubAsker{})

	_, body := get(t, srv.URL+"/tutorial/1")
	assert.Contains(t, body, "Passage Reliez la pile")
	assert.Contains(t, body, `href="https://fr.example.com/guide"`)
}

func TestTutorial_EmptyTutorialRenders(t *testing.T) {
	srv := newTestServer(t, &countingEnricher{}, &stubAsker{})
	resp, body := get(t, srv.URL+"/tutorial/vide")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Tutoriel vide")
}

func TestTutorial_MisalignedArtifactsIs500(t *testing.T) {
	enr := &countingEnricher{fn: func(steps []string) []models.Artifact {
		return []models.Artifact{models.Unavailable()}
	}}
	srv := newTestServer(t, enr, &stubAsker{})

	resp, body := get(t, srv.URL+"/tutorial/1")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "Une erreur est survenue")
	assert.NotContains(t, body, "Prenez un clou")
}

func TestTutorial_RenderFailureIs500WithoutPartialPage(t *testing.T) {
	pages := template.Must(template.New("").Parse(`
{{define "index.html"}}index{{end}}
{{define "tutorial.html"}}<h1>{{.Title}}</h1>{{.DoesNotExist}}{{end}}
{{define "error.html"}}erreur {{.Status}}: {{.Message}}{{end}}`))
	srv := newTestServer(t, &countingEnricher{}, &stubAsker{}, WithTemplates(pages))

	resp, body := get(t, srv.URL+"/tutorial/1")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "erreur 500: Une erreur est survenue. Veuillez réessayer plus tard.", body)
}

func TestIndex_ListsTutorialsInOrder(t *testing.T) {
	srv := newTestServer(t, &countingEnricher{}, &stubAsker{})

	resp, body := get(t, srv.URL+"/")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	i1 := strings.Index(body, `href="/tutorial/1"`)
	i2 := strings.Index(body, `href="/tutorial/vide"`)
	assert.True(t, i1 >= 0 && i2 > i1, body)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
}

func TestCatchAllIs404(t *testing.T) {
	srv := newTestServer(t, &countingEnricher{}, &stubAsker{})
	resp, body := get(t, srv.URL+"/nope/rien")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page introuvable.")
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, &countingEnricher{}, &stubAsker{})
	resp, body := get(t, srv.URL+"/static/script.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `fetch("/ask"`)
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newTestServer(t, &countingEnricher{}, &stubAsker{})

	resp, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	get(t, srv.URL+"/tutorial/999")
	resp, body = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "tutodiy_http_requests_total")
}

func postAsk(t *testing.T, srv *httptest.Server, contentType, body string) (int, askResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/ask", contentType, strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out askResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestAsk_JSONAndForm(t *testing.T) {
	asker := &stubAsker{}
	srv := newTestServer(t, &countingEnricher{}, asker)

	status, out := postAsk(t, srv, "application/json", `{"question":"Quel fil ?"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "réponse à Quel fil ?", out.Answer)

	status, out = postAsk(t, srv, "application/x-www-form-urlencoded", url.Values{"question": {"Quelle pile ?"}}.Encode())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "réponse à Quelle pile ?", out.Answer)
}

func TestAsk_BlankAndMalformedGetGuidance(t *testing.T) {
	var calls atomic.Int32
	svc := ask.NewService(llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		return "jamais", nil
	}))
	srv := newTestServer(t, &countingEnricher{}, svc)

	for _, body := range []string{`{"question":"   "}`, `{}`, `pas du json`} {
		status, out := postAsk(t, srv, "application/json", body)
		assert.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, ask.GuidanceMessage, out.Answer, body)
	}
	assert.Zero(t, calls.Load())
}

func TestAsk_CompleterFailureGetsFallback(t *testing.T) {
	svc := ask.NewService(llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", llm.ErrNotConfigured
	}))
	srv := newTestServer(t, &countingEnricher{}, svc)

	status, out := postAsk(t, srv, "application/json", `{"question":"Pourquoi ?"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, ask.FallbackMessage, out.Answer)
}

func TestAsk_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, &countingEnricher{}, &stubAsker{}, WithAllowedOrigins([]string{"https://tuto.example"}))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/ask", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://tuto.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "https://tuto.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestEndToEnd_WithPipelineAndFailingProducer(t *testing.T) {
	pipeline := enrich.New(enrich.Config{Mode: models.EnrichModeConcurrent, Backend: "test"})
	bound := pipeline.Bind(enrich.ProducerFunc(func(ctx context.Context, step string) (models.Artifact, error) {
		if step == "Enroulez le fil" {
			return models.Unavailable(), context.DeadlineExceeded
		}
		return models.ImageArtifact("https://img.example/ok.png"), nil
	}))
	srv := newTestServer(t, bound, &stubAsker{})

	resp, body := get(t, srv.URL+"/tutorial/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, strings.Count(body, "https://img.example/ok.png"))
	assert.Equal(t, 1, strings.Count(body, "Illustration indisponible."))
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s, err := New(testCatalog(t), &countingEnricher{}, &stubAsker{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0", time.Second) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
