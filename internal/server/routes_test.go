package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/diarize/internal/config"
	"github.com/xpanvictor/diarize/internal/domains/review"
	"github.com/xpanvictor/diarize/internal/domains/session"
	"github.com/xpanvictor/diarize/internal/upload"
	"github.com/xpanvictor/diarize/pkg/Logger"
	"github.com/xpanvictor/diarize/pkg/stt"
)

// fakeEngine settles immediately with a scripted result.
type fakeEngine struct {
	utts []stt.RawUtterance
	err  error
}

func (f *fakeEngine) Configured() error { return nil }

func (f *fakeEngine) Transcribe(_ context.Context, _ stt.Request, onProgress stt.ProgressFunc) ([]stt.RawUtterance, error) {
	if onProgress != nil {
		onProgress(50)
	}
	return f.utts, f.err
}

func newTestRouter(t *testing.T, engine stt.Engine, maxBytes int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := Logger.New(true)
	validator := upload.NewValidator(maxBytes, []string{".mp3", ".mp4", ".wav"}, logger)
	svc := review.New(validator, engine, 20*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Run(ctx)

	r := gin.New()
	InitializeRoutes(r, NewServerDependencies(svc, logger, &config.Settings{}))
	return r
}

func uploadRequest(t *testing.T, name, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(body)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcriptions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func waitSucceeded(t *testing.T, r *gin.Engine) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		w := doJSON(t, r, http.MethodGet, "/api/v1/transcriptions/current", "")
		var resp struct {
			Session session.Snapshot `json:"session"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode session: %v", err)
		}
		if resp.Session.Status == session.StatusSucceeded {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("session stuck in %q", resp.Session.Status)
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func TestFullReviewOverHTTP(t *testing.T) {
	engine := &fakeEngine{utts: []stt.RawUtterance{
		{ID: "utterance-0", Speaker: "Speaker A", Text: "good morning"},
		{ID: "utterance-1", Speaker: "Speaker B", Text: "morning"},
	}}
	r := newTestRouter(t, engine, 800<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "standup.wav", "pcm-bytes"))
	if w.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d, want 202: %s", w.Code, w.Body.String())
	}
	waitSucceeded(t, r)

	// Reassign the second speaker.
	w = doJSON(t, r, http.MethodPatch, "/api/v1/utterances/utterance-1/speaker", `{"speaker":"Speaker C"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("set speaker status = %d: %s", w.Code, w.Body.String())
	}

	// Insert an empty entry after the first, then type into it.
	w = doJSON(t, r, http.MethodPost, "/api/v1/utterances", `{"afterIndex":0}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("insert status = %d: %s", w.Code, w.Body.String())
	}
	var ins struct {
		Inserted struct {
			ID string `json:"id"`
		} `json:"inserted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ins); err != nil {
		t.Fatalf("decode insert: %v", err)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/utterances/"+ins.Inserted.ID+"/edit", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("begin edit status = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPut, "/api/v1/utterances/draft", `{"text":"did I miss anything"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("draft status = %d: %s", w.Code, w.Body.String())
	}
	time.Sleep(100 * time.Millisecond) // let the debounce commit land

	w = doJSON(t, r, http.MethodGet, "/api/v1/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "diarization.txt") {
		t.Errorf("Content-Disposition = %q, want diarization.txt attachment", cd)
	}
	want := "Speaker A: good morning\nSpeaker A: did I miss anything\nSpeaker C: morning"
	if got := w.Body.String(); got != want {
		t.Errorf("export body = %q, want %q", got, want)
	}
}

func TestSubmitRejectsOversizedUpload(t *testing.T) {
	r := newTestRouter(t, &fakeEngine{}, 4)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "huge.mp3", "more than four bytes"))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413: %s", w.Code, w.Body.String())
	}

	// The session must be untouched by a rejected upload.
	w = doJSON(t, r, http.MethodGet, "/api/v1/transcriptions/current", "")
	var resp struct {
		Session session.Snapshot `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if resp.Session.Status != session.StatusIdle {
		t.Errorf("status = %q, want idle", resp.Session.Status)
	}
}

func TestSubmitRequiresAudioField(t *testing.T) {
	r := newTestRouter(t, &fakeEngine{}, 800<<20)
	w := doJSON(t, r, http.MethodPost, "/api/v1/transcriptions", `{"not":"a file"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestEditEndpointsValidate(t *testing.T) {
	engine := &fakeEngine{utts: []stt.RawUtterance{
		{ID: "utterance-0", Speaker: "Speaker A", Text: "only line"},
	}}
	r := newTestRouter(t, engine, 800<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "clip.mp4", "av"))
	if w.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d", w.Code)
	}
	waitSucceeded(t, r)

	cases := []struct {
		name, method, path, body string
		want                     int
	}{
		{"insert out of range", http.MethodPost, "/api/v1/utterances", `{"afterIndex":9}`, http.StatusBadRequest},
		{"insert missing index", http.MethodPost, "/api/v1/utterances", `{}`, http.StatusBadRequest},
		{"unknown speaker label", http.MethodPatch, "/api/v1/utterances/utterance-0/speaker", `{"speaker":"Speaker Z"}`, http.StatusBadRequest},
		{"edit unknown id", http.MethodPost, "/api/v1/utterances/nope/edit", "", http.StatusNotFound},
		{"draft without edit", http.MethodPut, "/api/v1/utterances/draft", `{"text":"orphan"}`, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, tc.method, tc.path, tc.body)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, &fakeEngine{}, 800<<20)
	w := doJSON(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
