package cli

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestTextOutput_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for name, args := range map[string][]string{
		"groups_list": {"groups", "list"},
		"groups_show": {"groups", "show", "g1"},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			out, err := f.run(t, args...)
			require.NoError(t, err)
			g.Assert(t, name, []byte(out))
		})
	}
}
