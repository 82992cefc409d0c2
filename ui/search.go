package ui

import (
	"fmt"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/auto-hunter/site/search"
)

func SearchPanel() g.Node {
	return Div(
		ID("search-panel"),
		sectionHeader("Search Cars", "Describe what you want in plain language and the assistant turns it into Standvirtual filters."),
		Form(
			hx.Post("/api/search"),
			hx.Target("#search-results"),
			hx.Indicator("#search-indicator"),
			formGroup("What are you looking for?", "query",
				textInput("query", "query", "e.g. BMW 320d under 20000 euros, diesel, max 150000 km"),
			),
			Div(
				Class("flex items-center"),
				styledButton("Search", buttonPrimary, Type("submit")),
				Span(ID("search-indicator"), Class("htmx-indicator ml-3 text-sm text-gray-500 animate-pulse"), g.Text("Searching Standvirtual...")),
			),
		),
		Div(ID("search-results"), Class("mt-6")),
	)
}

func SearchResults(summary string, listings []search.RankedListing) g.Node {
	if len(listings) == 0 {
		return InfoMessage("No cars found for that search. Try loosening the filters.")
	}
	return Div(
		g.If(summary != "",
			Div(
				Class("bg-blue-50 border border-blue-200 rounded p-4 mb-6"),
				H3(Class("font-bold mb-2"), g.Text("Market summary")),
				P(Class("whitespace-pre-wrap text-sm"), g.Text(summary)),
			),
		),
		Div(
			Class("grid grid-cols-1 md:grid-cols-2 gap-4"),
			g.Group(g.Map(listings, ListingCard)),
		),
	)
}

func ListingCard(l search.RankedListing) g.Node {
	return Div(
		Class("border rounded-lg p-4 bg-white shadow-sm"),
		g.If(l.ImageURL != "",
			Img(Src(l.ImageURL), Alt(l.Title), Class("w-full h-40 object-cover rounded mb-3")),
		),
		H3(
			Class("font-bold text-lg"),
			A(Href(l.URL), Target("_blank"), Class("text-blue-600 hover:underline"), g.Text(l.Title)),
		),
		P(Class("text-xl font-bold text-green-700"), g.Textf("%d €", l.Price)),
		P(Class("text-sm text-gray-600"), g.Text(listingDetails(l))),
		g.If(l.Location != "",
			P(Class("text-sm text-gray-500"), g.Text(l.Location)),
		),
		g.If(l.Note != "",
			P(Class("text-sm italic mt-2 text-gray-700"), g.Text(l.Note)),
		),
	)
}

func listingDetails(l search.RankedListing) string {
	details := ""
	if l.Year > 0 {
		details += fmt.Sprintf("%d", l.Year)
	}
	if l.Mileage > 0 {
		if details != "" {
			details += " · "
		}
		details += fmt.Sprintf("%d km", l.Mileage)
	}
	if l.Fuel != "" {
		if details != "" {
			details += " · "
		}
		details += l.Fuel
	}
	return details
}
