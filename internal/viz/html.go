package viz

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/matsen/relgraph/internal/graph"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// DefaultScriptURL is where Cytoscape.js is loaded from.
const DefaultScriptURL = "https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout    string // "preset" (stored positions), "force", "circle" or "grid"
	Title     string
	ScriptURL string
	// DetailsURL, if set, is a URL prefix; tapping a node fetches
	// DetailsURL + <node id> + "/details" and shows the result.
	DetailsURL string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Layout:    "preset",
		Title:     "Relationship Graph",
		ScriptURL: DefaultScriptURL,
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"preset", "force", "circle", "grid"}

// edgeColors maps style tokens to line colors.
var edgeColors = map[string]string{
	graph.StyleFamily:     "#E74C3C",
	graph.StyleBusiness:   "#2980B9",
	graph.StyleEmployment: "#27AE60",
	graph.StyleLegal:      "#8E44AD",
	graph.StyleAssociate:  "#F39C12",
	graph.StyleContact:    "#16A085",
}

// GenerateHTML generates a self-contained HTML page for a snapshot.
func GenerateHTML(s graph.Snapshot, opts HTMLOptions) (string, error) {
	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}
	defaults := DefaultOptions()
	if opts.Title == "" {
		opts.Title = defaults.Title
	}
	if opts.ScriptURL == "" {
		opts.ScriptURL = defaults.ScriptURL
	}

	if s.IsEmpty() {
		return generateEmptyHTML(opts.Title)
	}

	graphJSON, err := ToCytoscapeJSON(s)
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:      opts.Title,
		ScriptURL:  opts.ScriptURL,
		GraphJSON:  template.JS(graphJSON),
		Layout:     layoutToCytoscape(opts.Layout),
		EdgeColors: edgeColors,
		DetailsURL: opts.DetailsURL,
	}

	var buf bytes.Buffer
	if err := compiledTemplate.ExecuteTemplate(&buf, "viz", data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// validateLayout checks if the layout option is valid.
func validateLayout(layout string) error {
	switch layout {
	case "", "preset", "force", "circle", "grid":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be preset, force, circle, or grid", layout)
	}
}

// templateData holds data for the HTML template.
type templateData struct {
	Title      string
	ScriptURL  string
	GraphJSON  template.JS
	Layout     string
	EdgeColors map[string]string
	DetailsURL string
}

// layoutToCytoscape converts user-friendly layout names to Cytoscape.js layout algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "force":
		return "cose"
	case "circle":
		return "circle"
	case "grid":
		return "grid"
	default:
		return "preset"
	}
}

func generateEmptyHTML(title string) (string, error) {
	var buf bytes.Buffer
	if err := compiledTemplate.ExecuteTemplate(&buf, "empty", templateData{Title: title}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `{{define "empty"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}} - Empty</title>
  <style>
    html, body { height: 100%; margin: 0; }
    body { display: grid; place-items: center; font: 14px system-ui, sans-serif; color: #555; background: #fafafa; }
    code { padding: 1px 5px; background: #eee; border-radius: 3px; }
  </style>
</head>
<body>
  <main>
    <h2>No graph data</h2>
    <p>Ingest a document with <code>relgraph ingest</code> or <code>POST /api/ingest</code>.</p>
  </main>
</body>
</html>{{end}}<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.ScriptURL}}"></script>
  <style>
    html, body { height: 100%; margin: 0; font: 13px system-ui, sans-serif; }
    #cy { position: absolute; inset: 0; background: #fff; }
    #tip { position: absolute; display: none; z-index: 10; pointer-events: none; max-width: 280px;
           padding: 6px 10px; background: #fff; border: 1px solid #ccc; border-radius: 4px; }
    #tip small { display: block; color: #888; text-transform: uppercase; font-size: 10px; }
    #panel { position: absolute; top: 0; right: 0; bottom: 0; width: 320px; overflow-y: auto; display: none;
             padding: 10px 16px; background: #fff; border-left: 1px solid #ddd; }
    #panel dt { margin-top: 6px; font-weight: 600; }
    #panel dd { margin: 0; color: #555; }
  </style>
</head>
<body>
  <div id="cy"></div>
  <div id="tip"></div>
  <aside id="panel"></aside>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const layout = {{.Layout}};
      const detailsURL = {{.DetailsURL}};

      const style = [
        { selector: 'node', style: {
            'label': 'data(label)', 'font-size': '11px', 'color': '#333',
            'text-valign': 'bottom', 'text-margin-y': '5px', 'text-wrap': 'wrap', 'text-max-width': '160px' } },
        { selector: 'node[type="person"]', style: {
            'shape': 'ellipse', 'background-color': '#4A90D9', 'width': '40px', 'height': '40px' } },
        { selector: 'node[type="organization"]', style: {
            'shape': 'round-rectangle', 'background-color': '#E8923A', 'width': '56px', 'height': '36px' } },
        { selector: 'node[image]', style: { 'background-image': 'data(image)', 'background-fit': 'cover' } },
        { selector: 'edge', style: {
            'label': 'data(label)', 'font-size': '9px', 'color': '#666', 'width': 2, 'curve-style': 'bezier',
            'line-color': '#95A5A6', 'target-arrow-color': '#95A5A6', 'target-arrow-shape': 'triangle' } },
        {{- range $token, $color := .EdgeColors}}
        { selector: 'edge[style="{{$token}}"]', style: { 'line-color': '{{$color}}', 'target-arrow-color': '{{$color}}' } },
        {{- end}}
        { selector: '.focus', style: { 'border-width': 3, 'border-color': '#ff6b6b' } },
        { selector: '.faded', style: { 'opacity': 0.25 } }
      ];

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: style,
        layout: { name: layout, animate: false, fit: true, padding: 40 }
      });

      const tip = document.getElementById('tip');
      const panel = document.getElementById('panel');

      function esc(v) {
        const d = document.createElement('div');
        d.textContent = v == null ? '' : String(v);
        return d.innerHTML;
      }

      function describe(el) {
        const d = el.data();
        if (el.isNode()) {
          return '<small>' + esc(d.type) + '</small><b>' + esc(d.label) + '</b>' +
            (d.subtitle ? '<div>' + esc(d.subtitle) + '</div>' : '');
        }
        return '<small>' + esc(d.relationKind || d.style) + '</small><b>' + esc(d.label) + '</b>' +
          '<div>' + esc(d.source) + ' → ' + esc(d.target) + '</div>';
      }

      cy.on('mouseover', 'node, edge', function(evt) {
        const p = evt.renderedPosition || evt.position;
        tip.innerHTML = describe(evt.target);
        tip.style.left = (p.x + 12) + 'px';
        tip.style.top = (p.y + 12) + 'px';
        tip.style.display = 'block';
      });
      cy.on('mouseout', 'node, edge', function() { tip.style.display = 'none'; });

      function openPanel(node) {
        if (!detailsURL) return;
        fetch(detailsURL + encodeURIComponent(node.id()) + '/details')
          .then(function(resp) { return resp.json(); })
          .then(function(entries) {
            const rows = (entries || []).map(function(e) {
              return '<dt>' + esc(e.key) + '</dt><dd>' + esc(e.value) + '</dd>';
            });
            panel.innerHTML = '<h3>' + esc(node.data('label')) + '</h3><dl>' + rows.join('') + '</dl>';
            panel.style.display = 'block';
          })
          .catch(function() { panel.style.display = 'none'; });
      }

      cy.on('tap', function(evt) {
        cy.elements().removeClass('focus faded');
        if (evt.target === cy) {
          panel.style.display = 'none';
          return;
        }
        if (!evt.target.isNode()) return;
        const near = evt.target.closedNeighborhood();
        near.addClass('focus');
        cy.elements().not(near).addClass('faded');
        openPanel(evt.target);
      });
    })();
  </script>
</body>
</html>`
