package web

import (
    "bytes"
    "html/template"
)

type templates struct {
    index *template.Template
    page  *template.Template
    game  *template.Template
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Parse(layoutTemplate))
    // Define the game template within the same set so the page can include it
    template.Must(base.New("game").Parse(gameTemplate))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1>
<form action="/game" method="post"><button>New game</button></form>`))
    page := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div sse-swap="game">{{template "game" .}}</div>
</div>`))
    // Standalone game template used for fragment rendering
    game := template.Must(template.New("game").Parse(gameTemplate))
    return &templates{index: index, page: page, game: game}
}

func renderTemplate(t *template.Template, name string, data any) ([]byte, error) {
    var buf bytes.Buffer
    var err error
    if name == "" {
        err = t.Execute(&buf, data)
    } else {
        err = t.ExecuteTemplate(&buf, name, data)
    }
    if err != nil {
        return nil, err
    }
    return buf.Bytes(), nil
}

const layoutTemplate = `<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>
<style>
body { font: 14px "Century Gothic", Futura, sans-serif; margin: 20px; }
.game { display: flex; flex-direction: row; }
.game-info { margin-left: 20px; }
.board-row { display: flex; }
.board-row form { margin: 0; }
.square { background: #fff; border: 1px solid #999; font-size: 24px; font-weight: bold; height: 34px; width: 34px; margin: -1px -1px 0 0; padding: 0; }
.players { display: flex; gap: 8px; margin: 8px 0; }
.players button { font-weight: bold; font-size: 18px; }
li.selected-step button { font-weight: bold; }
</style>
</head><body>{{template "content" .}}</body></html>`

const gameTemplate = `<div id="game" class="game">
  <div class="game-board">
    {{range .Rows}}
    <div class="board-row">
      {{range .}}
      <form hx-post="/game/{{$.ID}}/move" hx-target="#game" hx-swap="outerHTML" action="/game/{{$.ID}}/move" method="post">
        <input type="hidden" name="cell" value="{{.Index}}">
        <button type="submit" class="square{{if .Highlighted}} highlighted{{end}}" style="color: {{.Hex}}{{if .Highlighted}}; background-color: {{.Background}}{{end}}">{{.Mark}}</button>
      </form>
      {{end}}
    </div>
    {{end}}
  </div>
  <div class="game-info">
    <div class="status">{{.Status}}</div>
    <div class="players">
      {{range .Players}}
      <form hx-post="/game/{{$.ID}}/recolor" hx-target="#game" hx-swap="outerHTML" action="/game/{{$.ID}}/recolor" method="post">
        <input type="hidden" name="mark" value="{{.Mark}}">
        <button type="submit" style="color: {{.Hex}}">{{.Mark}}</button>
      </form>
      {{end}}
    </div>
    <form hx-post="/game/{{.ID}}/restart" hx-target="#game" hx-swap="outerHTML" action="/game/{{.ID}}/restart" method="post">
      <button type="submit">Restart Game</button>
    </form>
    <ol>
      {{range .Moves}}
      <li{{if .Current}} class="selected-step"{{end}}>
        <form hx-post="/game/{{$.ID}}/jump" hx-target="#game" hx-swap="outerHTML" action="/game/{{$.ID}}/jump" method="post">
          <input type="hidden" name="step" value="{{.Step}}">
          <button type="submit">{{.Label}}</button>
        </form>
      </li>
      {{end}}
    </ol>
    <form hx-post="/game/{{.ID}}/order" hx-target="#game" hx-swap="outerHTML" action="/game/{{.ID}}/order" method="post">
      <button type="submit">Toggle Order</button>
    </form>
  </div>
</div>
`
