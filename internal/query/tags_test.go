package query

import (
	"reflect"
	"testing"
)

func TestTagPatterns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "single tag",
			input: "原創",
			want:  []string{"%原創%"},
		},
		{
			name:  "two tags in order",
			input: "A,B",
			want:  []string{"%A%", "%B%"},
		},
		{
			name:  "segments are not trimmed",
			input: "原創, 插畫",
			want:  []string{"%原創%", "% 插畫%"},
		},
		{
			name:  "empty segment matches everything",
			input: "原創,,插畫",
			want:  []string{"%原創%", "%%", "%插畫%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TagPatterns(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TagPatterns(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTagConditions(t *testing.T) {
	got := TagConditions("A,B", "Author_Main.Tags")

	if len(got) != 2 {
		t.Fatalf("got %d conditions, want 2", len(got))
	}
	for i, want := range []string{"%A%", "%B%"} {
		if !reflect.DeepEqual(got[i].Args, []any{want}) {
			t.Errorf("condition %d args = %v, want [%s]", i, got[i].Args, want)
		}
		if got[i].SQL != "LOWER(Author_Main.Tags) LIKE LOWER(?)" {
			t.Errorf("condition %d SQL = %q", i, got[i].SQL)
		}
	}
}

func TestTagConditionsEmpty(t *testing.T) {
	if got := TagConditions("", "Author_Main.Tags"); got != nil {
		t.Errorf("TagConditions(\"\") = %v, want nil", got)
	}
}
