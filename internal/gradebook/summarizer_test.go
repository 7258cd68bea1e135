package gradebook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradesync/pkg/contracts/domain"
)

func TestSummarize(t *testing.T) {
	snap, _ := parse(t, domain.SideNew,
		"Full Name,Email,Project 1,Project 2,Final Project,Project 10\n"+
			"Alice,a@x.edu,3,0,1,\n"+
			"Bob,b@x.edu, ,2,0,1\n"+
			"Carol,c@x.edu,1,,x,1\n")

	m := domain.NewColumnMapping(domain.ColumnMapping{
		Assignments: []domain.AssignmentColumn{
			{Canonical: "Project 1: Intro (101)", Source: "Project 1"},
			{Canonical: "Project 2: Flix (102)", Source: "Project 2"},
			{Canonical: "Final Project: App (199)", Source: "Final Project"},
			{Canonical: "Project 10: Capstone (110)", Source: "Project 10"},
			{Canonical: "Unit 3 Quiz (130)", Source: "Unit 3 Quiz"},
		},
	}, nil)

	stats, warnings := NewSummarizer(m, nil).Summarize(context.Background(), snap, m.SourceNames())

	require.Len(t, stats, 4)
	assert.Equal(t, []string{"Project 1", "Project 2", "Project 10", "Final"},
		[]string{stats[0].Bucket, stats[1].Bucket, stats[2].Bucket, stats[3].Bucket})

	assert.Equal(t, []string{"Project 1"}, stats[0].Columns)
	assert.Equal(t, 2, stats[0].Submitted)
	assert.Equal(t, 1, stats[0].Unsubmitted)
	assert.Equal(t, 3, stats[0].Total)
	assert.InDelta(t, 66.67, stats[0].Percentage, 0.01)
	assert.Equal(t, 1, stats[1].Submitted)
	assert.Equal(t, 2, stats[2].Submitted)
	assert.Equal(t, 2, stats[3].Submitted, "non-numeric text counts as submitted")

	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarnMissingColumn, warnings[0].Kind)
	assert.Equal(t, "Unit 3 Quiz", warnings[0].Assignment)
}

func TestSummarizeGroupsColumnsIntoBuckets(t *testing.T) {
	snap, _ := parse(t, domain.SideOld,
		"Student,SIS Login ID,Project 3: Design (301),Project 3: Build (302),Lab 1 (400)\n"+
			"Alice,a@x.edu,1,,5\n"+
			"Bob,b@x.edu,0,4,\n")

	m := domain.NewColumnMapping(domain.ColumnMapping{}, nil)
	cols := []string{"Project 3: Design (301)", "Project 3: Build (302)", "Lab 1 (400)"}

	stats, warnings := NewSummarizer(m, nil).Summarize(context.Background(), snap, cols)
	require.Empty(t, warnings)
	require.Len(t, stats, 2)

	assert.Equal(t, "Lab 1", stats[0].Bucket)
	assert.Equal(t, 1, stats[0].Submitted)
	assert.Equal(t, 2, stats[0].Total)

	assert.Equal(t, "Project 3", stats[1].Bucket)
	assert.Equal(t, cols[:2], stats[1].Columns)
	assert.Equal(t, 2, stats[1].Submitted)
	assert.Equal(t, 4, stats[1].Total)
}

func TestSummarizeEmptySnapshot(t *testing.T) {
	snap, _ := parse(t, domain.SideNew, "Full Name,Email,Project 1\n")

	stats, _ := NewSummarizer(testMapping(), nil).Summarize(context.Background(), snap, []string{"Project 1"})
	require.Len(t, stats, 1)
	assert.Zero(t, stats[0].Total)
	assert.Zero(t, stats[0].Percentage)
}

func TestSortBuckets(t *testing.T) {
	labels := []string{"Final", "Project 10", "Bonus", "Project 2", "Lab 1", "Project 1"}
	SortBuckets(labels)
	assert.Equal(t, []string{"Lab 1", "Project 1", "Project 2", "Project 10", "Bonus", "Final"}, labels)
}
