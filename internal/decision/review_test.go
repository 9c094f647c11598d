package decision_test

import (
	"testing"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/decision"
	"github.com/JaimeStill/worldmap/internal/matching"
)

func TestGroups(t *testing.T) {
	clean := decision.Row{Application: prepare(nil)}
	fuzzy := decision.Row{
		Application: prepare(nil),
		Match: matching.Result{
			DuplicatePhone: true,
			Candidates:     []matching.Candidate{candidate("JOHN K OTIENO", 91), candidate("JON KAMAU OTIENO", 90)},
		},
	}
	incomplete := decision.Row{Application: prepare(func(r *applications.Raw) {
		r.CongregationSize = ""
		r.Title = "Elder"
	})}
	selfReported := decision.Row{Application: prepare(func(r *applications.Raw) { r.ReceivedBefore = "yes" })}

	groups := decision.Groups([]decision.Row{clean, fuzzy, incomplete, selfReported})

	if len(groups) != 3 {
		t.Fatalf("len(groups) = %d, want 3", len(groups))
	}

	tests := []struct {
		name       string
		group      decision.Group
		wantID     int
		wantIndex  int
		wantReason string
		wantCands  int
	}{
		{"duplicate and fuzzy", groups[0], 1, 1, "Phone duplicate | Name similarity", 2},
		{"incomplete", groups[1], 2, 2, "Missing required fields | Congregation size < 15 | Title not eligible", 0},
		{"review flag only", groups[2], 3, 3, "Needs review", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.group
			if g.ID != tt.wantID {
				t.Errorf("ID = %d, want %d", g.ID, tt.wantID)
			}
			if g.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", g.Index, tt.wantIndex)
			}
			if g.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", g.Reason, tt.wantReason)
			}
			if len(g.Candidates) != tt.wantCands {
				t.Errorf("len(Candidates) = %d, want %d", len(g.Candidates), tt.wantCands)
			}
		})
	}
}

func TestGroupsNoneFlagged(t *testing.T) {
	groups := decision.Groups([]decision.Row{{Application: prepare(nil)}})
	if groups == nil || len(groups) != 0 {
		t.Errorf("expected empty non-nil groups, got %#v", groups)
	}
}
