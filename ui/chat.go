package ui

import (
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/auto-hunter/site/search"
)

func ChatPanel(turns []search.ChatTurn, contextSet bool) g.Node {
	return Div(
		ID("chat-panel"),
		sectionHeader("Chat About Cars", "Ask follow-up questions about your last search results."),
		contextUploadForm(contextSet),
		Div(
			ID("chat-log"),
			Class("border rounded bg-gray-50 p-4 mb-4 min-h-32 max-h-96 overflow-y-auto"),
			ChatLog(turns),
		),
		Form(
			hx.Post("/api/chat"),
			hx.Target("#chat-log"),
			hx.Indicator("#chat-indicator"),
			g.Attr("hx-on::after-request", "this.reset()"),
			Div(
				Class("flex gap-2"),
				Input(
					Type("text"),
					Name("question"),
					Class("flex-1 p-2 border rounded"),
					Placeholder("e.g. Which of these is the best deal and why?"),
				),
				styledButton("Ask", buttonPrimary, Type("submit")),
			),
			Span(ID("chat-indicator"), Class("htmx-indicator text-sm text-gray-500 animate-pulse"), g.Text("Thinking...")),
		),
		Button(
			Class("mt-3 text-sm text-gray-500 hover:underline"),
			hx.Post("/api/chat/clear"),
			hx.Target("#chat-log"),
			g.Text("Clear conversation"),
		),
	)
}

func ChatLog(turns []search.ChatTurn) g.Node {
	if len(turns) == 0 {
		return P(Class("text-gray-400 text-sm"), g.Text("No messages yet. Run a search first, then ask away."))
	}
	return g.Group(g.Map(turns, chatMessage))
}

func chatMessage(t search.ChatTurn) g.Node {
	cls := "mb-3 p-3 rounded max-w-prose "
	label := "Assistant"
	if t.Role == "user" {
		cls += "bg-blue-100 ml-auto"
		label = "You"
	} else {
		cls += "bg-white border"
	}
	return Div(
		Class(cls),
		P(Class("text-xs font-bold text-gray-500 mb-1"), g.Text(label)),
		P(Class("whitespace-pre-wrap text-sm"), g.Text(t.Content)),
	)
}

func contextUploadForm(contextSet bool) g.Node {
	return Div(
		ID("context-status"),
		Class("mb-4"),
		Form(
			hx.Post("/api/context"),
			hx.Target("#context-status"),
			hx.Swap("outerHTML"),
			g.Attr("hx-encoding", "multipart/form-data"),
			Class("flex items-center gap-2"),
			Input(
				Type("file"),
				Name("document"),
				Accept(".txt,.md"),
				Class("text-sm"),
			),
			styledButton("Upload context", buttonSecondary, Type("submit")),
		),
		P(Class("text-xs text-gray-500 mt-1"), g.Text(statusLine(contextSet))),
	)
}

// ContextStatus re-renders the upload area after a POST /api/context.
func ContextStatus(contextSet bool, message string) g.Node {
	var banner g.Node
	if message != "" {
		if contextSet {
			banner = SuccessMessage(message)
		} else {
			banner = InfoMessage(message)
		}
	}
	return Div(
		ID("context-status"),
		Class("mb-4"),
		g.If(banner != nil, banner),
		P(Class("text-xs text-gray-500 mt-1"), g.Text(statusLine(contextSet))),
	)
}

func statusLine(contextSet bool) string {
	if contextSet {
		return "Context document loaded. It will be used in summaries and chat."
	}
	return "No extra context loaded."
}
