package worddiff

import (
	"fmt"
	"strings"
)

// project splits marked-up text into its two views: the insert-only view
// (delete regions removed, insert regions kept without their markers) and
// the delete-only view (the reverse). Text outside any region goes to both.
// An opened region whose end marker never appears is an error.
func project(marked string, m Markers) (insertView, deleteView string, err error) {
	var ins, del strings.Builder
	rest := marked
	for {
		di := strings.Index(rest, m.StartDelete)
		ii := strings.Index(rest, m.StartInsert)
		if di < 0 && ii < 0 {
			ins.WriteString(rest)
			del.WriteString(rest)
			break
		}
		// Whichever region starts first is next; on a tie (one start marker
		// is a prefix of the other) the longer marker wins.
		isDelete := ii < 0 || di >= 0 && (di < ii || di == ii && len(m.StartDelete) >= len(m.StartInsert))

		start, startMarker, endMarker := di, m.StartDelete, m.EndDelete
		if !isDelete {
			start, startMarker, endMarker = ii, m.StartInsert, m.EndInsert
		}
		ins.WriteString(rest[:start])
		del.WriteString(rest[:start])

		content, remainder, ok := cutRegion(rest[start+len(startMarker):], endMarker)
		if !ok {
			kind := "delete"
			if !isDelete {
				kind = "insert"
			}
			return "", "", fmt.Errorf("worddiff: unterminated %s region at offset %d", kind, len(marked)-len(rest)+start)
		}
		if isDelete {
			del.WriteString(content)
		} else {
			ins.WriteString(content)
		}
		rest = remainder
	}
	return ins.String(), del.String(), nil
}

// cutRegion splits region content from the text that follows its end marker.
func cutRegion(rest, endMarker string) (content, remainder string, ok bool) {
	end := strings.Index(rest, endMarker)
	if end < 0 {
		return "", "", false
	}
	return rest[:end], rest[end+len(endMarker):], true
}
