package schemagen

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

func teamNode() ir.Node {
	user := &ir.Model{
		Base:  ref("app.User:1"),
		Class: ir.Class{Name: "User", Doc: "A user."},
		Schema: &ir.ModelFields{Fields: []*ir.ModelField{
			field("id", &ir.Int{Ge: ptr[int64](0)}),
			field("email", &ir.String{}),
			field("tags", &ir.Default{Schema: &ir.List{Items: &ir.String{}}, Default: []string{}, HasDefault: true}),
		}},
	}
	userRef := func() ir.Node { return &ir.DefinitionRef{SchemaRef: "app.User:1"} }
	team := &ir.Model{
		Base:  ref("app.Team:2"),
		Class: ir.Class{Name: "Team"},
		Schema: &ir.ModelFields{Fields: []*ir.ModelField{
			field("name", &ir.String{}),
			field("members", &ir.List{Items: userRef()}),
			field("lead", &ir.Default{Schema: &ir.Nullable{Schema: userRef()}, HasDefault: true}),
		}},
	}
	return &ir.Definitions{Definitions: []ir.Node{user}, Schema: team}
}

func assertGolden(t *testing.T, name string, doc *js.Schema) {
	t.Helper()
	raw, err := js.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, append(raw, '\n'))
}

func TestGolden_TeamValidation(t *testing.T) {
	doc := generate(t, teamNode(), ir.ModeValidation, DefaultConfig())
	requireClosedDefs(t, doc)
	assertGolden(t, "team_validation", doc)
}
