package cms

import (
	"encoding/json"
	"reflect"
	"testing"

	models "inkstand/internal/domain/models/cms"
)

func strPtr(s string) *string { return &s }

func TestPatchArgsLeavesUnsetFieldsNil(t *testing.T) {
	tags := []string{"t1", "t2"}
	var noTags []string

	tests := []struct {
		name  string
		patch models.NodePatch
		want  []any
	}{
		{"empty", models.NodePatch{}, []any{nil, nil, nil, nil, nil}},
		{"name only", models.NodePatch{Name: strPtr("Intro")}, []any{"Intro", nil, nil, nil, nil}},
		{"clear description", models.NodePatch{Description: strPtr("")}, []any{nil, "", nil, nil, nil}},
		{"tags", models.NodePatch{TagIDs: &tags}, []any{nil, nil, []string{"t1", "t2"}, nil, nil}},
		{"remove all tags", models.NodePatch{TagIDs: &noTags}, []any{nil, nil, []string{}, nil, nil}},
		{
			"content and summary",
			models.NodePatch{Content: json.RawMessage(`{"a":1}`), Summary: json.RawMessage(`"s"`)},
			[]any{nil, nil, nil, []byte(`{"a":1}`), []byte(`"s"`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := patchArgs(tt.patch)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("patchArgs = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestScopeArgsOrder(t *testing.T) {
	args := scopeArgs(models.SiblingScope{SiteID: strPtr("site"), CreatorID: "user", ParentID: nil})
	if len(args) != 3 {
		t.Fatalf("len = %d, want 3", len(args))
	}
	if site, ok := args[0].(*string); !ok || site == nil || *site != "site" {
		t.Errorf("site arg = %#v", args[0])
	}
	if args[1] != "user" {
		t.Errorf("creator arg = %#v", args[1])
	}
	if parent, ok := args[2].(*string); !ok || parent != nil {
		t.Errorf("parent arg = %#v, want nil *string", args[2])
	}
}

func TestLockKeySeparatesTablesAndScopes(t *testing.T) {
	root := models.SiblingScope{CreatorID: "u1"}
	inFolder := models.SiblingScope{CreatorID: "u1", ParentID: strPtr("f1")}
	hosted := models.SiblingScope{SiteID: strPtr("s1"), CreatorID: "u1"}

	keys := map[string]bool{}
	for _, table := range []string{"dev_nodes", "test_nodes"} {
		for _, scope := range []models.SiblingScope{root, inFolder, hosted} {
			k := lockKey(table, scope)
			if keys[k] {
				t.Errorf("duplicate lock key %q", k)
			}
			keys[k] = true
		}
	}

	if lockKey("dev_nodes", inFolder) != lockKey("dev_nodes", models.SiblingScope{CreatorID: "u1", ParentID: strPtr("f1")}) {
		t.Error("equal scopes produced different keys")
	}
}

func TestOrderArraysSortedAndParallel(t *testing.T) {
	ids, ranks := orderArrays(map[string]int{"c": 0, "a": 2, "b": 1})

	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	if want := []int32{2, 1, 0}; !reflect.DeepEqual(ranks, want) {
		t.Errorf("ranks = %v, want %v", ranks, want)
	}

	ids, ranks = orderArrays(nil)
	if len(ids) != 0 || len(ranks) != 0 {
		t.Errorf("empty map gave %v %v", ids, ranks)
	}
}
