package formvalue

import "strconv"

// joinPath dot-joins a child segment onto a parent path. Array indices join
// as plain integer segments, union branches as "options.<index>".
func joinPath(parent, segment string) string {
	if parent == "" {
		return segment
	}
	if segment == "" {
		return parent
	}
	return parent + "." + segment
}

func indexSegment(idx int) string {
	return strconv.Itoa(idx)
}

func branchSegment(idx int) string {
	return "options." + strconv.Itoa(idx)
}
