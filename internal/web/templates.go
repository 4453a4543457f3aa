package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/google/uuid"
)

type templates struct {
	base  *template.Template
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"cellSymbol": func(owner int) string {
			switch owner {
			case 1:
				return "X"
			case -1:
				return "O"
			default:
				return ""
			}
		},
		"ownerClass": func(result string) string {
			switch result {
			case "agent":
				return "won-x"
			case "opponent":
				return "won-o"
			case "tie":
				return "tied"
			default:
				return ""
			}
		},
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Ultimate Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.large{display:grid;grid-template-columns:repeat(3,auto);gap:10px;width:max-content}
.sub{display:grid;grid-template-columns:repeat(3,2.2em);gap:2px;padding:4px;border:2px solid #ccc}
.sub.active{border-color:#2a7}
.sub.won-x{background:#fdd}.sub.won-o{background:#ddf}.sub.tied{background:#eee}
.sub form{margin:0}.sub button{width:2.2em;height:2.2em}
</style>
</head><body>{{template "content" .}}</body></html>`))
	// Define the board template within the same set so game can include it
	template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Ultimate Tic-Tac-Toe</h1>
<form action="/game" method="post">
  <label><input type="checkbox" name="agent_first" value="1"> Engine moves first</label>
  <button>Create</button>
</form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="board-feed" hx-sse="swap:board">{{template "board" .}}</div>
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  {{if .Over}}
  <div class="result">Game over: {{.Result}}</div>
  {{end}}
  <div class="large">
  {{$id := .ID}}
  {{range .Boards}}
    <div class="sub {{ownerClass .Result}}{{if .Active}} active{{end}}">
    {{range .Cells}}
      <form hx-post="/game/{{$id}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="move" value="{{.Move}}">
        <button type="submit"{{if not .Playable}} disabled{{end}}>{{cellSymbol .Owner}}</button>
      </form>
    {{end}}
    </div>
  {{end}}
  </div>
</div>
`

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
		return c.Value
	}
	// Generate UUIDv4 for player ID
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/"})
	return v
}
