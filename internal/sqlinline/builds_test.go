package sqlinline

import (
	"regexp"
	"strings"
	"testing"
)

var markerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestQueriesCarryUniqueMarkers(t *testing.T) {
	queries := map[string]string{
		"QCreateBuildsTable": QCreateBuildsTable,
		"QUpsertBuild":       QUpsertBuild,
		"QSelectBuildByID":   QSelectBuildByID,
		"QListBuilds":        QListBuilds,
	}
	seen := make(map[string]string, len(queries))
	for name, q := range queries {
		marker, _, _ := strings.Cut(q, "\n")
		if !markerPattern.MatchString(marker) {
			t.Fatalf("%s: invalid marker line %q", name, marker)
		}
		if prev, dup := seen[marker]; dup {
			t.Fatalf("%s reuses the marker of %s", name, prev)
		}
		seen[marker] = name
	}
}
