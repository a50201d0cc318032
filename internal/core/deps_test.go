package core

import (
	"reflect"
	"strings"
	"testing"
)

func TestEncodeDeps(t *testing.T) {
	tests := []struct {
		name         string
		predecessors string
		relation     string
		want         string
	}{
		{
			name:         "two predecessors share the row relation",
			predecessors: "CFA1, CTA1",
			relation:     "Finish",
			want:         "CFA1:finish,CTA1:finish",
		},
		{
			name:         "empty predecessors yield empty encoding",
			predecessors: "",
			relation:     "Finish",
			want:         "",
		},
		{
			name:         "whitespace-only predecessors yield empty encoding",
			predecessors: "   ",
			relation:     "anything",
			want:         "",
		},
		{
			name:         "missing relation keeps bare codes",
			predecessors: "CFA1, CTA1",
			relation:     "",
			want:         "CFA1,CTA1",
		},
		{
			name:         "single predecessor",
			predecessors: "WA3",
			relation:     "START",
			want:         "WA3:start",
		},
		{
			name:         "stray empty segments dropped",
			predecessors: "CFA1, , CTA1,",
			relation:     "Finish",
			want:         "CFA1:finish,CTA1:finish",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeDeps(tt.predecessors, tt.relation); got != tt.want {
				t.Errorf("EncodeDeps(%q, %q) = %q, want %q", tt.predecessors, tt.relation, got, tt.want)
			}
		})
	}
}

func TestDecodeDeps(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    []Dep
		wantErr bool
	}{
		{
			name:    "encoded pair round-trips",
			encoded: "CFA1:finish,CTA1:finish",
			want:    []Dep{{"CFA1", "finish"}, {"CTA1", "finish"}},
		},
		{
			name:    "bare code takes default relation",
			encoded: "CFA1",
			want:    []Dep{{"CFA1", DefaultRelation}},
		},
		{
			name:    "empty input decodes to nothing",
			encoded: "",
			want:    nil,
		},
		{
			name:    "unknown relation kind rejected",
			encoded: "CFA1:sideways",
			wantErr: true,
		},
		{
			name:    "relation without code rejected",
			encoded: ":finish",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDeps(tt.encoded)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeDeps(%q) succeeded, want error", tt.encoded)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeDeps(%q): %v", tt.encoded, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeDeps(%q) = %v, want %v", tt.encoded, got, tt.want)
			}
		})
	}
}

// Encoding then decoding then re-encoding must be stable.
func TestEncodeDecodeFixpoint(t *testing.T) {
	encoded := EncodeDeps("CFA1, CTA1", "Finish")
	deps, err := DecodeDeps(encoded)
	if err != nil {
		t.Fatal(err)
	}

	codes := make([]string, len(deps))
	for i, d := range deps {
		codes[i] = d.Code
	}
	again := EncodeDeps(strings.Join(codes, ", "), deps[0].Relation)
	if again != encoded {
		t.Errorf("re-encoding changed the value: %q -> %q", encoded, again)
	}
}

func TestFindCycle(t *testing.T) {
	tests := []struct {
		name      string
		graph     map[string][]string
		wantCycle bool
	}{
		{
			name: "linear chain is a DAG",
			graph: map[string][]string{
				"A": nil, "B": {"A"}, "C": {"B"},
			},
		},
		{
			name: "diamond is a DAG",
			graph: map[string][]string{
				"A": nil, "B": {"A"}, "C": {"A"}, "D": {"B", "C"},
			},
		},
		{
			name: "self-dependency cycles",
			graph: map[string][]string{
				"A": {"A"},
			},
			wantCycle: true,
		},
		{
			name: "two-step cycle",
			graph: map[string][]string{
				"A": {"B"}, "B": {"A"},
			},
			wantCycle: true,
		},
		{
			name: "cycle buried in a larger graph",
			graph: map[string][]string{
				"A": nil, "B": {"A"}, "C": {"D"}, "D": {"E"}, "E": {"C"},
			},
			wantCycle: true,
		},
		{
			name: "edge to unknown code ignored",
			graph: map[string][]string{
				"A": {"Z"}, "B": {"A"},
			},
		},
		{
			name:  "empty graph",
			graph: map[string][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycle := FindCycle(tt.graph)
			if tt.wantCycle && cycle == nil {
				t.Error("FindCycle returned nil, want a cycle")
			}
			if !tt.wantCycle && cycle != nil {
				t.Errorf("FindCycle returned %v, want nil", cycle)
			}
		})
	}
}
