package httpapi

import (
	"embed"
	"html/template"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/kwhalen/doorboard/internal/doorboard/service"
)

//go:embed display.gohtml
var displayFS embed.FS

var displayTmpl = template.Must(template.ParseFS(displayFS, "display.gohtml"))

// defaultDisplayCSS styles the kiosk grid. Overridable via config for sites
// that want their own look without rebuilding.
const defaultDisplayCSS = `.kiosk { font-family: system-ui, sans-serif; background:#000; color:#fff; padding:16px; min-height:100vh }
.kiosk h1 { margin:0 0 12px; font-size:28px; color:#cfcfcf }
.k-grid { display:grid; grid-template-columns: repeat(4, minmax(0,1fr)); gap:16px }
.k-card { background:#111; border-radius:16px; box-shadow:0 2px 10px rgba(0,0,0,.35); overflow:hidden; display:flex; flex-direction:column }
.k-photo { width:100%; height:220px; object-fit:cover; display:block; background:#222 }
.k-name { font-weight:600; font-size:18px; padding:10px 12px 0 12px }
.k-meta { opacity:.85; font-size:14px; padding:4px 12px 12px 12px; color:#c9c9c9; border-top:1px solid rgba(255,255,255,.06) }
@media (max-width:1200px){ .k-grid{ grid-template-columns: repeat(3,1fr) } }
@media (max-width:900px){ .k-grid{ grid-template-columns: repeat(2,1fr) } }
@media (max-width:600px){ .k-grid{ grid-template-columns: repeat(1,1fr) } }`

// DisplayConfig controls the kiosk display page. The code word is a thin
// gate against drive-by scraping, not authentication.
type DisplayConfig struct {
	CodeWord    string
	Doors       []string // allowlist; empty = any door
	PollSeconds int
	CardCap     int
	CustomCSS   string // empty = built-in stylesheet
}

type displayData struct {
	CSS     template.CSS
	FeedURL string
	PollMs  int
	CardCap int
}

// handleDisplay renders the full-screen kiosk page. The page itself is a
// thin polling client over the presence feed; all state lives server-side.
func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	if s.display.CodeWord != "" && chi.URLParam(r, "code") != s.display.CodeWord {
		writeError(w, http.StatusForbidden, "forbidden", "bad code word")
		return
	}

	group := chi.URLParam(r, "group")
	if group == "" {
		group = service.GroupAll
	}

	door := chi.URLParam(r, "door")
	if door != "" && len(s.display.Doors) > 0 && !slices.Contains(s.display.Doors, door) {
		writeError(w, http.StatusNotFound, "unknown_door", "door is not on the allowlist")
		return
	}

	feedURL := "/v1/presence/" + group
	if door != "" {
		feedURL += "/" + door
	}

	css := s.display.CustomCSS
	if css == "" {
		css = defaultDisplayCSS
	}

	noStore(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := displayTmpl.Execute(w, displayData{
		CSS:     template.CSS(css),
		FeedURL: feedURL,
		PollMs:  s.display.PollSeconds * 1000,
		CardCap: s.display.CardCap,
	}); err != nil {
		s.logger.Error().Err(err).Msg("display render failed")
	}
}
