package ui

import (
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"

	"github.com/auto-hunter/site/config"
)

// ---- Page Layout ----

func Page(title string, content []g.Node) g.Node {
	return components.HTML5(components.HTML5Props{
		Title:    title,
		Language: "en",
		Head: []g.Node{
			Link(
				Rel("stylesheet"),
				Href(config.TailwindCSSURL),
			),
			Script(
				Type("text/javascript"),
				Src(config.HTMXURL),
				Defer(),
			),
			StyleEl(g.Raw(".htmx-indicator{display:none} .htmx-request .htmx-indicator{display:inline-block} .htmx-request.htmx-indicator{display:inline-block}")),
		},
		Body: []g.Node{
			Class("bg-gray-100"),
			Div(
				Class("container mx-auto px-4 py-8 max-w-5xl"),
				pageHeader("Auto Hunter"),
				tabBar("search"),
				Div(
					ID("panel"),
					Class("bg-white rounded-lg shadow p-6"),
					g.Group(content),
				),
				footer(),
			),
		},
	})
}

func pageHeader(text string) g.Node {
	return Div(
		Class("mb-6"),
		H1(Class("text-4xl font-bold"), g.Text(text)),
		P(Class("text-gray-500"), g.Text("Search the market, sanity-check an offer, and know your running costs.")),
	)
}

var tabs = []struct {
	Key   string
	Label string
}{
	{"search", "Search Cars"},
	{"chat", "Chat About Cars"},
	{"fuel", "Fuel & Cost Analyzer"},
	{"offer", "Negotiation Helper"},
}

func tabBar(active string) g.Node {
	var items []g.Node
	for _, tab := range tabs {
		cls := "px-4 py-2 rounded-t-lg border-b-2 "
		if tab.Key == active {
			cls += "border-blue-500 bg-white font-semibold"
		} else {
			cls += "border-transparent hover:bg-gray-200"
		}
		items = append(items, Button(
			Class(cls),
			hx.Get("/panel/"+tab.Key),
			hx.Target("#panel"),
			hx.Swap("innerHTML"),
			g.Text(tab.Label),
		))
	}
	return Div(Class("flex gap-2 mb-0"), g.Group(items))
}

func footer() g.Node {
	return P(
		Class("text-center text-sm text-gray-400 mt-8"),
		g.Text("Auto Hunter - market data is scraped best-effort and analyzed by AI; verify before you buy."),
	)
}
