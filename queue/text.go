package queue

import (
	"fmt"
	"strings"
)

const textHeader = "New queue:"

// Text renders the displayed queue message: a header followed by one
// numbered line per member in join order.
func Text(members []Member) string {
	var sb strings.Builder
	sb.WriteString(textHeader)
	sb.WriteString("\n\n")

	for i, m := range members {
		usernamePart := ""
		if m.Username != "" {
			usernamePart = fmt.Sprintf("(@%s)", m.Username)
		}
		fmt.Fprintf(&sb, "%d. %s %s %s\n", i+1, m.FirstName, m.LastName, usernamePart)
	}

	return sb.String()
}
