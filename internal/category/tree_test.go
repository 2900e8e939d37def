package category

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/fekuna/omnipos-admin-service/internal/model"
)

func ptr(s string) *string { return &s }

func cat(id string, parent *string) model.Category {
	return model.Category{BaseModel: model.BaseModel{ID: id}, Name: "cat " + id, ParentID: parent}
}

// shape renders a tree as nested ids, e.g. "1(2()) 3()".
func shape(nodes []*model.Category) string {
	out := ""
	for i, n := range nodes {
		if i > 0 {
			out += " "
		}
		out += n.ID + "(" + shape(n.Children) + ")"
	}
	return out
}

func TestBuildTree_OrphanBecomesRoot(t *testing.T) {
	flat := []model.Category{
		cat("1", nil),
		cat("2", ptr("1")),
		cat("3", ptr("99")),
	}

	got := BuildTree(flat)

	if diff := cmp.Diff("1(2()) 3()", shape(got)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	assert.NotNil(t, got[0].Children[0].Children, "leaf children are an empty slice")
	assert.Empty(t, got[1].Children)
}

func TestBuildTree_ChildrenKeepInputOrder(t *testing.T) {
	flat := []model.Category{
		cat("b", ptr("root")),
		cat("root", nil),
		cat("a", ptr("root")),
		cat("c", ptr("root")),
		cat("a1", ptr("a")),
	}

	got := BuildTree(flat)
	assert.Equal(t, "root(b() a(a1()) c())", shape(got))
}

func TestBuildTree_DoesNotMutateInput(t *testing.T) {
	flat := []model.Category{cat("1", nil), cat("2", ptr("1"))}
	BuildTree(flat)
	assert.Nil(t, flat[0].Children)
}

func TestBuildTree_ChildrenAreNotShared(t *testing.T) {
	shared := []*model.Category{}
	a := cat("a", nil)
	a.Children = shared
	b := cat("b", nil)
	b.Children = shared

	got := BuildTree([]model.Category{a, b, cat("a1", ptr("a"))})
	assert.Len(t, got[0].Children, 1)
	assert.Empty(t, got[1].Children)
}

func TestBuildTree_CycleMembersArePromoted(t *testing.T) {
	flat := []model.Category{
		cat("x", ptr("y")),
		cat("y", ptr("x")),
		cat("self", ptr("self")),
		cat("r", nil),
	}

	got := BuildTree(flat)
	assert.Equal(t, "r() x(y()) self()", shape(got))
}

func TestBuildTree_DuplicateIDsUseFirst(t *testing.T) {
	flat := []model.Category{cat("1", nil), cat("1", ptr("2")), cat("2", nil)}
	got := BuildTree(flat)
	assert.Equal(t, "1() 2()", shape(got))
}

func TestBuildTree_EveryInputAppearsOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(40)
		flat := make([]model.Category, n)
		for i := range flat {
			var parent *string
			switch rng.Intn(4) {
			case 0:
				// root
			case 1:
				parent = ptr(fmt.Sprintf("missing-%d", i))
			default:
				parent = ptr(fmt.Sprintf("%d", rng.Intn(n)))
			}
			flat[i] = cat(fmt.Sprintf("%d", i), parent)
		}

		seen := map[string]int{}
		for _, c := range Flatten(BuildTree(flat)) {
			seen[c.ID]++
		}

		assert.Len(t, seen, n, "round %d", round)
		for id, count := range seen {
			assert.Equal(t, 1, count, "round %d id %s", round, id)
		}
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten(BuildTree([]model.Category{
		cat("1", nil), cat("2", ptr("1")), cat("3", nil), cat("4", ptr("2")),
	}))

	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"1", "2", "4", "3"}, ids)
}
