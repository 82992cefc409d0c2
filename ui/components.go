package ui

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// ---- Layout Components ----

func sectionHeader(title string, helpText string) g.Node {
	nodes := []g.Node{
		H2(Class("text-2xl font-bold mb-1"), g.Text(title)),
	}
	if helpText != "" {
		nodes = append(nodes,
			P(
				Class("text-sm text-gray-600 mb-4"),
				g.Text(helpText),
			),
		)
	}
	return g.Group(nodes)
}

func formGroup(label, forID string, control g.Node) g.Node {
	return Div(
		Class("mb-4"),
		Label(For(forID), Class("block font-bold mb-1"), g.Text(label)),
		control,
	)
}

func textInput(id, name, placeholder string) g.Node {
	return Input(
		Type("text"),
		ID(id),
		Name(name),
		Class("w-full p-2 border rounded"),
		Placeholder(placeholder),
	)
}

func numberInput(id, name, placeholder string, attrs ...g.Node) g.Node {
	all := []g.Node{
		Type("number"),
		ID(id),
		Name(name),
		Class("w-full p-2 border rounded"),
		Placeholder(placeholder),
	}
	return Input(append(all, attrs...)...)
}

// ---- Button Components ----

type ButtonVariant string

const (
	buttonPrimary   ButtonVariant = "primary"
	buttonSecondary ButtonVariant = "secondary"
)

func getButtonClass(variant ButtonVariant) string {
	baseClass := "px-4 py-2 rounded inline-block "
	switch variant {
	case buttonSecondary:
		return baseClass + "text-blue-500 hover:underline"
	default:
		return baseClass + "bg-blue-500 text-white hover:bg-blue-600"
	}
}

func styledButton(text string, variant ButtonVariant, attrs ...g.Node) g.Node {
	allAttrs := append([]g.Node{Class(getButtonClass(variant))}, attrs...)
	return Button(append(allAttrs, g.Text(text))...)
}

// ---- Message Components ----

func ValidationError(message string) g.Node {
	return Div(
		Class("bg-red-100 border border-red-500 text-red-700 px-4 py-3 rounded"),
		g.Text(message),
	)
}

func InfoMessage(message string) g.Node {
	return Div(
		Class("bg-blue-50 border border-blue-200 text-blue-800 px-4 py-3 rounded"),
		g.Text(message),
	)
}

func SuccessMessage(message string) g.Node {
	return Div(
		Class("bg-green-50 border border-green-300 text-green-800 px-4 py-3 rounded"),
		g.Text(message),
	)
}

// ActionError renders one action's failure inside its result panel. heading
// is short; body may carry remediation guidance shown verbatim.
func ActionError(heading, body string) g.Node {
	return Div(
		Class("bg-red-100 border border-red-500 text-red-700 px-4 py-3 rounded"),
		P(Class("font-bold"), g.Text(heading)),
		P(g.Text(body)),
	)
}

// RawTextNotice shows the model's raw output when structured parsing failed,
// so the response is never lost.
func RawTextNotice(note, raw string) g.Node {
	return Div(
		Class("bg-yellow-50 border border-yellow-300 px-4 py-3 rounded"),
		P(Class("font-bold text-yellow-800 mb-2"), g.Text(note)),
		Pre(
			Class("whitespace-pre-wrap text-sm text-gray-800"),
			g.Text(raw),
		),
	)
}
