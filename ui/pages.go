package ui

import (
	"fmt"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func HomePage() g.Node {
	return Page(
		"Auto Hunter",
		[]g.Node{
			SearchPanel(),
		},
	)
}

func ErrorPage(code int, message string) g.Node {
	return Page(
		fmt.Sprintf("Error %d", code),
		[]g.Node{
			pageHeader(fmt.Sprintf("Error %d", code)),
			P(g.Text(message)),
		},
	)
}
