package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/ensigniasec/ascii-view/internal/grid"
	"github.com/ensigniasec/ascii-view/internal/layout"
	"github.com/ensigniasec/ascii-view/internal/theme"
)

type formData struct {
	Columns    int
	MinColumns int
	MaxColumns int
	Themes     []theme.Theme
	Selected   string
	Error      string
}

type resultData struct {
	Form     formData
	Filename string
	Columns  int
	Grid     grid.CharacterGrid
	Layout   layout.ComputedLayout
	Theme    theme.Theme
}

const pageStyles = `<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f4f4f4;color:#222}
main{max-width:960px;margin:0 auto;padding:1rem}
form{display:flex;flex-wrap:wrap;gap:.5rem;align-items:center;margin-bottom:1rem}
.error{color:#b00020;font-weight:bold}
#stage{width:100%;height:70vh;overflow:auto}
#art{margin:0;font-family:ui-monospace,Menlo,Consolas,monospace;white-space:pre;overflow:hidden}
.meta{color:#666;font-size:.85rem}
</style>`

// fitScript keeps the art sized to its container: the page reports the
// container size and applies the layout the server computes. Before the first
// upload there is no #stage, so the form posts the size #stage will have.
const fitScript = `<script>
(function(){
  var stage=document.getElementById('stage'),art=document.getElementById('art');
  var form=document.getElementById('upload');
  function region(){
    if(stage){return {w:stage.clientWidth,h:stage.clientHeight};}
    var main=document.querySelector('main')||document.body;
    return {w:main.clientWidth,h:Math.round(window.innerHeight*0.7)};
  }
  if(form){form.addEventListener('submit',function(){var r=region();form.viewport_w.value=r.w;form.viewport_h.value=r.h;});}
  if(!art||!stage){return;}
  var rows=art.dataset.rows,cols=art.dataset.cols,timer=null;
  function refit(){
    var r=region();
    fetch('/api/fit?rows='+rows+'&cols='+cols+'&width='+r.w+'&height='+r.h)
      .then(function(res){return res.ok?res.json():null;})
      .then(function(l){if(!l){return;}
        art.style.fontSize=l.font_size_px+'px';
        art.style.lineHeight=l.line_height_multiplier;
        art.style.width=l.box_width_px+'px';
        art.style.height=l.box_height_px+'px';});
  }
  window.addEventListener('resize',function(){clearTimeout(timer);timer=setTimeout(refit,100);});
  refit();
})();
</script>`

func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := "<!DOCTYPE html><html><head><meta charset=\"utf-8\">" +
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">" +
			"<title>" + templ.EscapeString(title) + "</title>" + pageStyles + "</head><body><main>"
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>"+fitScript+"</body></html>")
		return err
	})
}

func uploadForm(f formData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<h1>ascii-view</h1>")
		if f.Error != "" {
			b.WriteString(`<p class="error" role="alert">` + templ.EscapeString(f.Error) + "</p>")
		}
		b.WriteString(`<form id="upload" method="POST" action="/convert" enctype="multipart/form-data">`)
		b.WriteString(`<input type="file" name="image" accept="image/*" required>`)
		fmt.Fprintf(&b, `<label>Columns <input type="number" name="width" value="%d" min="%d" max="%d"></label>`,
			f.Columns, f.MinColumns, f.MaxColumns)
		b.WriteString(`<label>Theme <select name="theme">`)
		for _, t := range f.Themes {
			sel := ""
			if t.Name == f.Selected {
				sel = " selected"
			}
			name := templ.EscapeString(t.Name)
			fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, name, sel, name)
		}
		b.WriteString(`</select></label>`)
		b.WriteString(`<input type="hidden" name="viewport_w" value=""><input type="hidden" name="viewport_h" value="">`)
		b.WriteString(`<button type="submit">Convert</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func homePage(f formData) templ.Component {
	return page("ascii-view", uploadForm(f))
}

// artBlock renders the grid in a pre sized by the computed layout.
func artBlock(d resultData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		l := d.Layout
		style := fmt.Sprintf("font-size:%.3fpx;line-height:%.3f;width:%.3fpx;height:%.3fpx;color:%s;background:%s",
			l.FontSizePx, l.LineHeightMultiplier, l.BoxWidthPx, l.BoxHeightPx,
			templ.EscapeString(d.Theme.Foreground), templ.EscapeString(d.Theme.Background))
		var b strings.Builder
		fmt.Fprintf(&b, `<p class="meta">%s &middot; %d columns &middot; %dx%d cells &middot; font %.1fpx</p>`,
			templ.EscapeString(d.Filename), d.Columns, d.Grid.MaxLineLength(), d.Grid.LineCount(), l.FontSizePx)
		fmt.Fprintf(&b, `<div id="stage" style="background:%s">`, templ.EscapeString(d.Theme.Background))
		fmt.Fprintf(&b, `<pre id="art" data-rows="%d" data-cols="%d" style="%s">`,
			d.Grid.LineCount(), d.Grid.MaxLineLength(), style)
		b.WriteString(templ.EscapeString(strings.ReplaceAll(d.Grid.String(), "\t", " ")))
		b.WriteString("</pre></div>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func resultPage(d resultData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := uploadForm(d.Form).Render(ctx, w); err != nil {
			return err
		}
		return artBlock(d).Render(ctx, w)
	})
	return page(d.Filename+" - ascii-view", body)
}
