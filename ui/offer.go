package ui

import (
	"fmt"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/auto-hunter/site/offer"
)

func OfferPanel() g.Node {
	return Div(
		ID("offer-panel"),
		sectionHeader("Negotiation Helper", "Paste a listing and get a price read, a scam check, and a message you can send the seller."),
		Form(
			hx.Post("/api/offer"),
			hx.Target("#offer-results"),
			hx.Indicator("#offer-indicator"),
			formGroup("Listing description", "description",
				Textarea(
					ID("description"),
					Name("description"),
					Rows("5"),
					Class("w-full p-2 border rounded"),
					Placeholder("Paste the full ad text here"),
				),
			),
			Div(
				Class("grid grid-cols-1 md:grid-cols-3 gap-4"),
				formGroup("Asking price (€)", "price", numberInput("price", "price", "e.g. 15000", Min("0"))),
				formGroup("Mileage (km)", "mileage", numberInput("mileage", "mileage", "e.g. 120000", Min("0"))),
				formGroup("Year", "year", numberInput("year", "year", "e.g. 2018", Min("1950"))),
			),
			Div(
				Class("flex items-center"),
				styledButton("Analyze offer", buttonPrimary, Type("submit")),
				Span(ID("offer-indicator"), Class("htmx-indicator ml-3 text-sm text-gray-500 animate-pulse"), g.Text("Analyzing...")),
			),
		),
		Div(ID("offer-results"), Class("mt-6")),
	)
}

func OfferAnalysis(a offer.Analysis) g.Node {
	if a.NeedsReview {
		return RawTextNotice(
			"The analysis came back in an unexpected format. Here is the raw response:",
			a.RawText,
		)
	}
	return Div(
		riskBanner(a),
		Div(
			Class("grid grid-cols-1 md:grid-cols-2 gap-4 mb-4"),
			analysisBox("Price position", a.PricePosition),
			analysisBox("Suggested discount", discountText(a.SuggestedDiscountEUR)),
		),
		g.If(a.Justification != "",
			analysisBox("Why", a.Justification),
		),
		g.If(len(a.ScamReasons) > 0,
			Div(
				Class("mb-4"),
				H3(Class("font-bold mb-2"), g.Text("Risk signals")),
				Ul(
					Class("list-disc pl-5 text-sm"),
					g.Group(g.Map(a.ScamReasons, func(r string) g.Node {
						return Li(g.Text(r))
					})),
				),
			),
		),
		g.If(a.BuyerMessage != "",
			Div(
				Class("bg-gray-50 border rounded p-4"),
				H3(Class("font-bold mb-2"), g.Text("Message to the seller")),
				P(Class("whitespace-pre-wrap text-sm"), g.Text(a.BuyerMessage)),
			),
		),
	)
}

func riskBanner(a offer.Analysis) g.Node {
	cls := "px-4 py-3 rounded mb-4 font-bold "
	var text string
	switch a.RiskLabel {
	case offer.RiskGreen:
		cls += "bg-green-100 text-green-800 border border-green-300"
		text = "Low scam risk"
	case offer.RiskYellow:
		cls += "bg-yellow-100 text-yellow-800 border border-yellow-300"
		text = "Some warning signs"
	case offer.RiskRed:
		cls += "bg-red-100 text-red-800 border border-red-300"
		text = "High scam risk"
	default:
		cls += "bg-gray-100 text-gray-800 border border-gray-300"
		text = "Risk could not be assessed"
	}
	return Div(
		Class(cls),
		g.Textf("%s (score %d/100)", text, a.ScamRiskScore),
	)
}

func analysisBox(title, body string) g.Node {
	return Div(
		Class("border rounded p-4 bg-white"),
		H3(Class("font-bold mb-1"), g.Text(title)),
		P(Class("text-sm whitespace-pre-wrap"), g.Text(body)),
	)
}

func discountText(eur int) string {
	if eur <= 0 {
		return "No discount expected"
	}
	return fmt.Sprintf("around %d €", eur)
}
