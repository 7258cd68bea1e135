package gradebook

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gradesync/pkg/contracts/domain"
)

func testMapping() *domain.ColumnMapping {
	return domain.NewColumnMapping(domain.ColumnMapping{
		Identity: map[domain.Side]string{domain.SideOld: "SIS Login ID", domain.SideNew: "Email"},
		Names:    map[domain.Side]string{domain.SideOld: "Student", domain.SideNew: "Full Name"},
		Emails:   map[domain.Side]string{domain.SideOld: "SIS Login ID", domain.SideNew: "Email"},
		HeaderAnchors: []string{"Full Name", "Email"},
		SideAnchors: map[domain.Side][]string{
			domain.SideOld: {"Student", "SIS Login ID"},
		},
		Assignments: []domain.AssignmentColumn{
			{Canonical: "Project 1: Intro (101)", Source: "Project 1"},
			{Canonical: "Project 2: Flix (102)", Source: "Project 2"},
			{Canonical: "Final Project: App (199)", Source: "Final Project"},
		},
		StatusColumns:       []string{"Status", "CodePath Certificate Status"},
		ExcludedStatuses:    []string{"Withdrawn", "Dropped"},
		IgnoredIdentities:   []string{"Points Possible"},
		UnsubmittedPrefixes: []string{"Project", "Lab", "Unit"},
	}, nil)
}

func parse(t *testing.T, side domain.Side, content string) (*domain.Snapshot, []domain.Warning) {
	t.Helper()
	p := NewParser(testMapping(), nil)
	snap, warnings, err := p.ParseWithWarnings(context.Background(), domain.Source{
		Path:    string(side) + ".csv",
		Side:    side,
		Content: content,
	})
	require.NoError(t, err)
	return snap, warnings
}

func warningKinds(ws []domain.Warning) []domain.WarningKind {
	kinds := make([]domain.WarningKind, len(ws))
	for i, w := range ws {
		kinds[i] = w.Kind
	}
	return kinds
}

func identities(records []*domain.StudentRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Identity
	}
	return out
}

func grade(v string) domain.Grade {
	return domain.GradeOf(decimal.RequireFromString(v))
}
