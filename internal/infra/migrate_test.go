package infra

import (
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	got := splitStatements("-- header\ncreate table a (\n  id int\n);\n\ncreate index b on a (id);\nselect 1")
	want := []string{"create table a (\n  id int\n);", "create index b on a (id);", "select 1"}
	if len(got) != len(want) {
		t.Fatalf("got %d statements, want %d: %#v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("statement %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSchemaDefinesTables(t *testing.T) {
	schema := Schema()
	for _, table := range []string{"teachers", "categories", "classes", "courses", "course_classes", "integration_tokens"} {
		if !strings.Contains(schema, "create table if not exists "+table+" (") {
			t.Fatalf("schema is missing table %s", table)
		}
	}
	for _, stmt := range splitStatements(schema) {
		if !strings.HasSuffix(stmt, ";") {
			t.Fatalf("unterminated statement: %q", stmt)
		}
	}
}
