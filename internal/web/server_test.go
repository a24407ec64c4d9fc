package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diogo/ideagen/internal/api"
	"github.com/diogo/ideagen/internal/chat"
	"github.com/diogo/ideagen/internal/models"
)

func newTestServer(t *testing.T, client api.GeminiClientInterface) (*Server, *httptest.Server, *http.Client) {
	t.Helper()

	srv, err := NewServer(func() *chat.Session { return chat.NewSession(client) })
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return srv, ts, &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func get(t *testing.T, c *http.Client, u string) (int, string) {
	t.Helper()
	resp, err := c.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func post(t *testing.T, c *http.Client, u string, form url.Values) (int, string) {
	t.Helper()
	resp, err := c.PostForm(u, form)
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func transcript(t *testing.T, c *http.Client, base string) transcriptJSON {
	t.Helper()
	_, body := get(t, c, base+"/api/transcript")
	var tr transcriptJSON
	if err := json.Unmarshal([]byte(body), &tr); err != nil {
		t.Fatalf("invalid transcript JSON %q: %v", body, err)
	}
	return tr
}

func waitIdle(t *testing.T, c *http.Client, base string) transcriptJSON {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if tr := transcript(t, c, base); !tr.Busy {
			return tr
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("session never became idle")
	return transcriptJSON{}
}

var validProfile = url.Values{
	"industry": {"coffee shop"},
	"budget":   {"5000"},
	"currency": {"JPY"},
	"tone":     {"funny"},
}

func TestIndex_NewSession(t *testing.T) {
	srv, ts, c := newTestServer(t, api.NewMockClientWithText("x"))

	status, body := get(t, c, ts.URL+"/")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "Hello! I can help you") {
		t.Error("page should show the greeting")
	}
	if !strings.Contains(body, `action="/profile"`) || !strings.Contains(body, `value="JPY"`) {
		t.Error("page should show the profile form with the currency selector")
	}
	if strings.Contains(body, `http-equiv="refresh"`) {
		t.Error("idle page should not auto-refresh")
	}

	u, _ := url.Parse(ts.URL)
	if len(c.Jar.Cookies(u)) != 1 {
		t.Error("expected a session cookie")
	}

	get(t, c, ts.URL+"/")
	if srv.Store().Len() != 1 {
		t.Errorf("same browser should reuse its session, have %d", srv.Store().Len())
	}
}

func TestIndex_UnknownCookieStartsFresh(t *testing.T) {
	srv, ts, _ := newTestServer(t, api.NewMockClientWithText("x"))

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-uuid"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if srv.Store().Len() != 1 {
		t.Errorf("expected a new session, have %d", srv.Store().Len())
	}
	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName && c.Value != "not-a-uuid" {
			found = true
		}
	}
	if !found {
		t.Error("expected a replacement cookie")
	}
}

func TestProfile_Incomplete(t *testing.T) {
	mock := api.NewMockClientWithText("x")
	_, ts, c := newTestServer(t, mock)

	status, body := post(t, c, ts.URL+"/profile", url.Values{"industry": {"coffee"}, "tone": {"funny"}})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, `action="/profile"`) {
		t.Error("form should stay open")
	}
	if tr := transcript(t, c, ts.URL); tr.FormSubmitted || len(tr.Entries) != 1 {
		t.Errorf("incomplete profile changed the session: %+v", tr)
	}
	if mock.Calls() != 0 {
		t.Error("incomplete profile issued a request")
	}
}

func TestProfile_ThenChat(t *testing.T) {
	mock := api.NewMockClientWithText("**Idea**\nLine2")
	_, ts, c := newTestServer(t, mock)

	if status, _ := post(t, c, ts.URL+"/profile", validProfile); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}

	tr := waitIdle(t, c, ts.URL)
	if !tr.FormSubmitted || tr.Phase != "chatting" || len(tr.Entries) != 3 {
		t.Fatalf("unexpected transcript %+v", tr)
	}
	if tr.Entries[1].Sender != "user" || !strings.Contains(tr.Entries[1].Text, "¥5000") {
		t.Errorf("profile entry = %+v", tr.Entries[1])
	}
	if !tr.Entries[2].IsRichText {
		t.Error("reply should be rich text")
	}

	_, body := get(t, c, ts.URL+"/")
	if !strings.Contains(body, "<b>Idea</b><br />Line2") {
		t.Error("reply should render bold and line breaks")
	}
	if !strings.Contains(body, `action="/messages"`) || strings.Contains(body, `action="/profile"`) {
		t.Error("page should switch to the message box")
	}

	// repeated profile is ignored
	post(t, c, ts.URL+"/profile", validProfile)
	if tr := waitIdle(t, c, ts.URL); len(tr.Entries) != 3 {
		t.Errorf("second profile changed the transcript: %d entries", len(tr.Entries))
	}

	post(t, c, ts.URL+"/messages", url.Values{"message": {"  more names  "}})
	tr = waitIdle(t, c, ts.URL)
	if len(tr.Entries) != 5 || tr.Entries[3].Text != "more names" {
		t.Errorf("unexpected transcript after message %+v", tr)
	}

	post(t, c, ts.URL+"/messages", url.Values{"message": {"   "}})
	if tr := waitIdle(t, c, ts.URL); len(tr.Entries) != 5 {
		t.Error("blank message changed the transcript")
	}
	if mock.Calls() != 2 {
		t.Errorf("expected 2 requests, got %d", mock.Calls())
	}
}

func TestBusyPage(t *testing.T) {
	release := make(chan struct{})
	mock := &api.MockGeminiClient{
		GenerateFunc: func(ctx context.Context, prompt string, opts *api.GenerateOptions) (*models.ModelOutput, error) {
			<-release
			return &models.ModelOutput{Candidates: []models.Candidate{{Text: "done"}}}, nil
		},
	}
	_, ts, c := newTestServer(t, mock)
	defer close(release)

	_, body := post(t, c, ts.URL+"/profile", validProfile)

	if !strings.Contains(body, `http-equiv="refresh"`) {
		t.Error("busy page should auto-refresh")
	}
	if !strings.Contains(body, "Thinking...") {
		t.Error("busy page should show the thinking indicator")
	}
	if !strings.Contains(body, `<button type="submit" disabled>`) {
		t.Error("send button should be disabled while busy")
	}

	post(t, c, ts.URL+"/messages", url.Values{"message": {"hello?"}})
	if tr := transcript(t, c, ts.URL); len(tr.Entries) != 2 {
		t.Errorf("message while busy should be dropped, have %d entries", len(tr.Entries))
	}
}

func TestReplyIsEscaped(t *testing.T) {
	_, ts, c := newTestServer(t, api.NewMockClientWithText(`<script>alert(1)</script> **ok**`))

	post(t, c, ts.URL+"/profile", validProfile)
	waitIdle(t, c, ts.URL)

	_, body := get(t, c, ts.URL+"/")
	if strings.Contains(body, "<script>alert") {
		t.Error("reply markup must be escaped")
	}
	if !strings.Contains(body, "&lt;script&gt;alert(1)&lt;/script&gt; <b>ok</b>") {
		t.Error("escaped reply with bold span expected")
	}
}

func TestFallbackIsPlain(t *testing.T) {
	mock := &api.MockGeminiClient{GenerateContentVal: &models.ModelOutput{}}
	_, ts, c := newTestServer(t, mock)

	post(t, c, ts.URL+"/profile", validProfile)
	tr := waitIdle(t, c, ts.URL)

	last := tr.Entries[len(tr.Entries)-1]
	if last.Text != models.FallbackText || last.IsRichText {
		t.Errorf("expected plain fallback, got %+v", last)
	}
}

func TestHealth(t *testing.T) {
	srv, ts, c := newTestServer(t, api.NewMockClientWithText("x"))

	status, _ := get(t, c, ts.URL+"/health")
	if status != http.StatusOK {
		t.Errorf("status = %d", status)
	}
	if srv.Store().Len() != 0 {
		t.Error("health checks should not create sessions")
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	srv, err := NewServer(func() *chat.Session { return chat.NewSession(api.NewMockClientWithText("x")) })
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestMessage_BeforeProfileIsRejected(t *testing.T) {
	mock := api.NewMockClientWithText("x")
	srv, ts, c := newTestServer(t, mock)

	get(t, c, ts.URL+"/")
	status, body := post(t, c, ts.URL+"/messages", url.Values{"message": {"skip the form"}})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, `action="/profile"`) {
		t.Error("profile form should still be shown")
	}
	if tr := transcript(t, c, ts.URL); tr.FormSubmitted || len(tr.Entries) != 1 {
		t.Errorf("message before the profile changed the session: %+v", tr)
	}
	if mock.Calls() != 0 {
		t.Error("message before the profile issued a request")
	}

	// a browser with no session gets redirected without one being created
	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := noFollow.PostForm(ts.URL+"/messages", url.Values{"message": {"hi"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("cookieless message status = %d, want 303", resp.StatusCode)
	}
	if srv.Store().Len() != 1 {
		t.Errorf("cookieless message created a session, have %d", srv.Store().Len())
	}
}

func TestTranscript_WithoutCookieStoresNothing(t *testing.T) {
	srv, ts, _ := newTestServer(t, api.NewMockClientWithText("x"))

	for i := 0; i < 50; i++ {
		resp, err := http.Get(ts.URL + "/api/transcript")
		if err != nil {
			t.Fatal(err)
		}
		var tr transcriptJSON
		if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if tr.Phase != "collecting-profile" || len(tr.Entries) != 1 {
			t.Fatalf("unexpected transcript %+v", tr)
		}
	}

	if srv.Store().Len() != 0 {
		t.Errorf("transcript polling created %d sessions", srv.Store().Len())
	}
}

func TestIndex_SessionLimit(t *testing.T) {
	srv, err := NewServer(
		func() *chat.Session { return chat.NewSession(api.NewMockClientWithText("x")) },
		WithSessionLimits(5, time.Minute),
	)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	for i := 0; i < 40; i++ {
		resp, err := http.Get(ts.URL + "/")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	if n := srv.Store().Len(); n != 5 {
		t.Errorf("store should stay at its cap of 5, have %d", n)
	}
}
