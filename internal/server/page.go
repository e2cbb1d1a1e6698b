package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-map/internal/render"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>DMV Housing: {{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 0; }
.dropdown { position: absolute; top: 30px; left: 40px; z-index: 10; }
.panels { display: flex; align-items: flex-start; }
.infoLabel { position: absolute; background: #fff; border: 1px solid #999; padding: 4px 8px; pointer-events: none; width: {{.LabelWidth}}px; }
.infoLabel h1 { font-size: 14px; margin: 0; }
.infoLabel .countyName { font-size: 12px; color: #555; }
.chartTitle { font-size: 20px; }
</style>
</head>
<body>
<select class="dropdown" id="dropdown">
{{- range .Options}}
<option value="{{.Value}}"{{if .Disabled}} disabled class="titleOption"{{end}}{{if .Selected}} selected{{end}}>{{.Text}}</option>
{{- end}}
</select>
<div class="panels">
<div id="mapPanel">{{.Map}}</div>
<div id="chartPanel">{{.Chart}}</div>
</div>
<script>
(function () {
  var svgNS = "http://www.w3.org/2000/svg";
  var hovers = {};

  function set(el, c) {
    Object.keys(c.attrs || {}).forEach(function (k) { el.setAttribute(k, c.attrs[k]); });
    Object.keys(c.style || {}).forEach(function (k) { el.style.setProperty(k, c.style[k]); });
    if (c.text != null) el.textContent = c.text;
  }
  function apply(cmds) {
    (cmds || []).forEach(function (c) {
      var el = document.getElementById(c.id);
      if (c.op === "remove") {
        if (el) el.remove();
        return;
      }
      if (c.surface === "page") return;
      if (c.op === "create") {
        var root = document.querySelector("#" + c.surface + "Panel > svg");
        if (!root) return;
        if (el) el.remove();
        el = document.createElementNS(svgNS, c.element);
        el.setAttribute("id", c.id);
        set(el, c);
        root.appendChild(el);
        return;
      }
      if (el) set(el, c);
    });
  }
  function selector(el) {
    var cls = (el.getAttribute("class") || "").split(" ");
    return (cls[0] === "counties" || cls[0] === "bars") ? cls[1] : null;
  }
  function clearLabels() {
    document.querySelectorAll(".infoLabel").forEach(function (l) { l.remove(); });
  }
  function showLabel(label) {
    clearLabels();
    var div = document.createElement("div");
    div.id = label.id;
    div.className = "infoLabel";
    var h1 = document.createElement("h1");
    h1.textContent = label.value;
    div.appendChild(h1);
    div.appendChild(document.createTextNode(label.attribute));
    var name = document.createElement("div");
    name.className = "countyName";
    name.textContent = label.county_name;
    div.appendChild(name);
    document.body.appendChild(div);
  }
  document.getElementById("dropdown").addEventListener("change", function (e) {
    fetch("/api/selection", {
      method: "PUT",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({attribute: e.target.value})
    }).then(function (r) { return r.json(); }).then(function (u) { apply(u.commands); });
  });
  document.addEventListener("mouseover", function (e) {
    var sel = selector(e.target);
    if (!sel) return;
    var token = {};
    hovers[sel] = token;
    fetch("/api/hover/" + encodeURIComponent(sel), {method: "POST"})
      .then(function (r) { return r.json(); })
      .then(function (h) {
        // Stale: the pointer already left, or re-entered since.
        if (hovers[sel] !== token) return;
        apply(h.commands);
        showLabel(h.label);
      });
  });
  document.addEventListener("mouseout", function (e) {
    var sel = selector(e.target);
    if (!sel) return;
    delete hovers[sel];
    var label = document.getElementById(sel + "_label");
    if (label) label.remove();
    fetch("/api/hover/" + encodeURIComponent(sel), {method: "DELETE"})
      .then(function (r) { return r.json(); })
      .then(function (b) {
        // Re-entered before the restore landed; keep the highlight.
        if (hovers[sel]) return;
        apply(b.commands);
      });
  });
  document.addEventListener("mousemove", function (e) {
    var label = document.querySelector(".infoLabel");
    if (!label) return;
    var q = "x=" + e.clientX + "&y=" + e.clientY + "&viewport=" + window.innerWidth + "&width={{.LabelWidth}}";
    fetch("/api/label-position?" + q)
      .then(function (r) { return r.json(); })
      .then(function (p) { label.style.left = p.x + "px"; label.style.top = p.y + "px"; });
  });
})();
</script>
</body>
</html>
`))

type pageData struct {
	Title      string
	Options    []render.Option
	Map        template.HTML
	Chart      template.HTML
	LabelWidth int
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.page()
	if err != nil {
		logger(r).Error("server: render page failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) page() ([]byte, error) {
	mapSVG, err := s.svg(render.SurfaceMap)
	if err != nil {
		return nil, err
	}
	chartSVG, err := s.svg(render.SurfaceChart)
	if err != nil {
		return nil, err
	}

	attr := s.ctrl.Attribute()
	data := pageData{
		Title:      render.Title(attr),
		Options:    render.DropdownOptions(attr),
		Map:        inline(mapSVG),
		Chart:      inline(chartSVG),
		LabelWidth: DefaultLabelWidth,
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, eris.Wrap(err, "server: execute page template")
	}
	return buf.Bytes(), nil
}

// inline strips the XML prolog so the SVG can sit inside HTML.
func inline(svg []byte) template.HTML {
	if i := bytes.Index(svg, []byte("<svg")); i > 0 {
		svg = svg[i:]
	}
	return template.HTML(svg) //nolint:gosec
}
