package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/diogo/ideagen/internal/chat"
	apierrors "github.com/diogo/ideagen/internal/errors"
	"github.com/diogo/ideagen/internal/models"
	"github.com/diogo/ideagen/internal/profile"
	"github.com/diogo/ideagen/internal/render"
)

type currencyOption struct {
	Code  string
	Label string
}

type pageData struct {
	Entries       []template.HTML
	Busy          bool
	FormSubmitted bool
	Refresh       int
	Currencies    []currencyOption
}

func currencyOptions() []currencyOption {
	opts := []currencyOption{{Code: "", Label: "Local default (" + profile.ResolveCurrency("") + ")"}}
	for _, code := range profile.SupportedCodes {
		opts = append(opts, currencyOption{Code: code, Label: code + " (" + profile.Glyph(code) + ")"})
	}
	return opts
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	state := SessionFromContext(r.Context()).Snapshot()

	data := pageData{
		Entries:       make([]template.HTML, 0, len(state.Transcript)),
		Busy:          state.Busy,
		FormSubmitted: state.FormSubmitted,
		Currencies:    currencyOptions(),
	}
	for _, e := range state.Transcript {
		// render.Entry escapes everything except the bold and line-break markup it adds
		data.Entries = append(data.Entries, template.HTML(render.Entry(e)))
	}
	if state.Busy {
		data.Refresh = busyRefreshSeconds
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error().Err(err).Msg("failed to render page")
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	draft := models.ProfileDraft{
		Industry: r.PostForm.Get("industry"),
		Budget:   r.PostForm.Get("budget"),
		Currency: r.PostForm.Get("currency"),
		Tone:     r.PostForm.Get("tone"),
	}
	// an incomplete or repeated profile just shows the page again
	profile.NewCollector(SessionFromContext(r.Context())).Start(s.ctx, draft)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	// chatting starts with the profile form
	session := SessionFromContext(r.Context())
	if session == nil || !session.FormSubmitted() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	text := r.PostForm.Get("message")
	session.SetPendingInput(text)

	if err := session.Start(s.ctx, chat.OriginInput, text); err != nil {
		if !errors.Is(err, apierrors.ErrBusy) {
			s.logger.Error().Err(err).Msg("failed to start turn")
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type entryJSON struct {
	Text       string `json:"text"`
	Sender     string `json:"sender"`
	IsRichText bool   `json:"is_rich_text"`
	HTML       string `json:"html"`
}

type transcriptJSON struct {
	Entries       []entryJSON `json:"entries"`
	Busy          bool        `json:"busy"`
	FormSubmitted bool        `json:"form_submitted"`
	Phase         string      `json:"phase"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		// what a new browser would see; nothing is stored
		session = s.store.newSession()
	}
	state := session.Snapshot()

	resp := transcriptJSON{
		Entries:       make([]entryJSON, 0, len(state.Transcript)),
		Busy:          state.Busy,
		FormSubmitted: state.FormSubmitted,
		Phase:         state.Phase().String(),
	}
	for _, e := range state.Transcript {
		resp.Entries = append(resp.Entries, entryJSON{
			Text:       e.Text,
			Sender:     string(e.Sender),
			IsRichText: e.IsRichText,
			HTML:       render.Entry(e),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode transcript")
	}
}
