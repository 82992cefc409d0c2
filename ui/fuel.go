package ui

import (
	"fmt"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/auto-hunter/site/fuel"
)

func FuelPanel() g.Node {
	return Div(
		ID("fuel-panel"),
		sectionHeader("Fuel & Cost Analyzer", "Estimate what a car will cost you to run each month."),
		Form(
			hx.Post("/api/fuel"),
			hx.Target("#fuel-results"),
			hx.Indicator("#fuel-indicator"),
			Div(
				Class("grid grid-cols-1 md:grid-cols-2 gap-4"),
				formGroup("Kilometers per month", "km_per_month",
					numberInput("km_per_month", "km_per_month", "e.g. 1000", Min("0"), Step("any"))),
				formGroup("Consumption (L/100km)", "consumption",
					numberInput("consumption", "consumption", "e.g. 6.0", Min("0"), Step("any"))),
				formGroup("Fuel price (€/L)", "fuel_price",
					numberInput("fuel_price", "fuel_price", "e.g. 1.70", Min("0"), Step("any"))),
				formGroup("Passengers (besides driver)", "passengers",
					numberInput("passengers", "passengers", "0", Min("0"))),
				formGroup("Average passenger weight (kg)", "passenger_weight",
					numberInput("passenger_weight", "passenger_weight", "e.g. 75", Min("0"), Step("any"))),
			),
			Div(
				Class("flex items-center"),
				styledButton("Calculate", buttonPrimary, Type("submit")),
				Span(ID("fuel-indicator"), Class("htmx-indicator ml-3 text-sm text-gray-500 animate-pulse"), g.Text("Calculating...")),
			),
		),
		Div(ID("fuel-results"), Class("mt-6")),
	)
}

func FuelResults(e fuel.Estimate, explanation string) g.Node {
	return Div(
		Div(
			Class("grid grid-cols-1 md:grid-cols-3 gap-4 mb-4"),
			statBox("Fuel per month", fmt.Sprintf("%.1f L", e.LitersUsed)),
			statBox("Monthly cost", fmt.Sprintf("%.2f €", e.MonthlyCost)),
			statBox("Yearly cost", fmt.Sprintf("%.2f €", e.YearlyCost)),
		),
		g.If(e.AdditionalConsumption > 0,
			P(
				Class("text-sm text-gray-600 mb-4"),
				g.Textf("Passenger load adds %.2f L/100km, for an effective %.2f L/100km.",
					e.AdditionalConsumption, e.FinalConsumption),
			),
		),
		g.If(explanation != "",
			Div(
				Class("bg-blue-50 border border-blue-200 rounded p-4"),
				H3(Class("font-bold mb-2"), g.Text("What this means")),
				P(Class("whitespace-pre-wrap text-sm"), g.Text(explanation)),
			),
		),
	)
}

func statBox(label, value string) g.Node {
	return Div(
		Class("border rounded p-4 bg-white text-center"),
		P(Class("text-sm text-gray-500"), g.Text(label)),
		P(Class("text-2xl font-bold"), g.Text(value)),
	)
}
