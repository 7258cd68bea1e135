package gradebook

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradesync/pkg/contracts/domain"
)

func TestMatchPasses(t *testing.T) {
	lms, _ := parse(t, domain.SideOld,
		"Student,SIS Login ID\n"+
			"\"Doe, Alice\",alice@x.edu\n"+
			"Bob Brown,bob@old.edu\n"+
			"\"Müller, Zoë\",zoe@x.edu\n"+
			"Gone Student,gone@x.edu\n")
	platform, _ := parse(t, domain.SideNew,
		"Full Name,Email\n"+
			"Zoe Muller,zoe.m@personal.com\n"+
			"Alice Doe,ALICE@x.edu\n"+
			"Bob Brown,bob@new.edu\n"+
			"New Student,new@x.edu\n")

	res := Match(lms, platform)

	require.Len(t, res.Matched, 3)
	assert.Equal(t, "Zoe Muller", res.Matched[0].New.Name)
	assert.Equal(t, domain.MatchViaName, res.Matched[0].Via)
	assert.Equal(t, "zoe@x.edu", res.Matched[0].Old.Identity)
	assert.Equal(t, domain.MatchViaIdentity, res.Matched[1].Via)
	assert.Equal(t, domain.MatchViaName, res.Matched[2].Via)

	assert.Equal(t, []string{"new@x.edu"}, identities(res.NewOnly))
	assert.Equal(t, []string{"gone@x.edu"}, identities(res.OldOnly))
}

func TestMatchEmailPass(t *testing.T) {
	completers, _ := parse(t, domain.SideOld,
		"Student,SIS Login ID,Email\n"+
			"Alice,A001,alice@x.edu\n")
	roster, _ := parse(t, domain.SideNew,
		"Full Name,Email\n"+
			"Alice Z,alice@x.edu\n")

	res := Match(completers, roster)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, domain.MatchViaEmail, res.Matched[0].Via)
}

func TestMatchAmbiguousNamesStayUnmatched(t *testing.T) {
	old, _ := parse(t, domain.SideNew,
		"Full Name,Email\n"+
			"Sam Lee,sam1@x.edu\n"+
			"Sam Lee,sam2@x.edu\n")
	cur, _ := parse(t, domain.SideNew,
		"Full Name,Email\n"+
			"Sam Lee,sam@new.edu\n")

	res := Match(old, cur)
	assert.Empty(t, res.Matched)
	assert.Len(t, res.OldOnly, 2)
	assert.Len(t, res.NewOnly, 1)
}

func TestMatchDoesNotMutate(t *testing.T) {
	old, _ := parse(t, domain.SideNew, "Full Name,Email\nA,a@x.edu\nB,b@x.edu\n")
	cur, _ := parse(t, domain.SideNew, "Full Name,Email\nB,b@x.edu\nC,c@x.edu\n")
	before := append([]string(nil), old.Keys()...)

	Match(old, cur)
	assert.Equal(t, before, old.Keys())
	assert.Equal(t, []string{"b@x.edu", "c@x.edu"}, cur.Keys())
}

func TestMatchSymmetry(t *testing.T) {
	a, _ := parse(t, domain.SideNew,
		"Full Name,Email\n"+
			"Alice Doe,alice@x.edu\n"+
			"José Núñez,jose@old.edu\n"+
			"Sam Lee,sam1@x.edu\n"+
			"Sam Lee,sam2@x.edu\n"+
			"Only A,onlya@x.edu\n")
	b, _ := parse(t, domain.SideNew,
		"Full Name,Email\n"+
			"Jose Nunez,jose@new.edu\n"+
			"Sam Lee,sam3@x.edu\n"+
			"alice doe,ALICE@x.edu\n"+
			"Only B,onlyb@x.edu\n")

	ab := Match(a, b)
	ba := Match(b, a)

	pairKeys := func(res *domain.MatchResult, flip bool) []string {
		var out []string
		for _, p := range res.Matched {
			if flip {
				out = append(out, p.New.Key+"|"+p.Old.Key)
			} else {
				out = append(out, p.Old.Key+"|"+p.New.Key)
			}
		}
		sort.Strings(out)
		return out
	}

	assert.Equal(t, pairKeys(ab, false), pairKeys(ba, true))
	assert.Len(t, ab.Matched, 2)
	assert.Equal(t, identities(ab.OldOnly), identities(ba.NewOnly))
}

func TestNameKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Doe, Alice", "alice doe"},
		{"  Zoë   Müller ", "zoe muller"},
		{"NÚÑEZ, José", "jose nunez"},
		{"a, b, c", "a, b, c"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NameKey(tt.in))
		})
	}
}

func TestIdentitySet(t *testing.T) {
	snap, _ := parse(t, domain.SideNew, "Full Name,Email\nAlice Doe,a@x.edu\nBob,b@x.edu\n")
	other, _ := parse(t, domain.SideNew, "Full Name,Email\n\"Doe, Alice\",z@x.edu\nCarl,c@x.edu\n")

	byName := NewIdentitySet(snap.Records(), ByName)
	assert.True(t, byName.Contains("alice doe"))
	assert.Equal(t, []string{"c@x.edu"}, identities(byName.Difference(other.Records(), ByName)))

	byID := NewIdentitySet(snap.Records(), ByIdentity)
	assert.Len(t, byID.Difference(other.Records(), ByIdentity), 2)
}
