package gradebook

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gradesync/internal/errors"
	"gradesync/pkg/contracts/domain"
)

const platformExport = `CodePath Course Export,,,,,
Generated 2024-10-01,,,,,
,Full Name,Email,CodePath Certificate Status,Project 1,Project 2
,"Doe, Alice",Alice@X.edu ,Active,3,5
,Bob B,bob@x.edu,Dropped,1,1
,Carol C,,Active,1,1
,Dan D,dan@x.edu,Active,abc,0
,Alice Again,alice@x.edu,Active,9,9
`

func TestParsePlatformExport(t *testing.T) {
	snap, warnings := parse(t, domain.SideNew, platformExport)

	require.Equal(t, 2, snap.Len())
	assert.Equal(t, []string{"alice@x.edu", "dan@x.edu"}, snap.Keys())
	assert.Equal(t, []string{"Full Name", "Email", "CodePath Certificate Status", "Project 1", "Project 2"}, snap.Columns)
	assert.Equal(t, domain.SideNew, snap.Side)
	assert.NotZero(t, snap.Fingerprint)

	alice, ok := snap.Get("alice@x.edu")
	require.True(t, ok)
	assert.Equal(t, "Alice@X.edu", alice.Identity)
	assert.Equal(t, "Doe, Alice", alice.Name)
	assert.Equal(t, "alice@x.edu", alice.Email)
	assert.Equal(t, "Active", alice.Status)
	assert.Equal(t, 4, alice.Row)
	assert.Equal(t, "3", alice.Field("Project 1").Number.String())

	dan, ok := snap.Get("dan@x.edu")
	require.True(t, ok)
	assert.Equal(t, 7, dan.Row)
	assert.Equal(t, domain.FieldInvalid, dan.Field("Project 1").State)

	assert.Equal(t, []domain.WarningKind{
		domain.WarnExcludedStatus,
		domain.WarnBlankIdentity,
		domain.WarnDuplicateIdentity,
	}, warningKinds(warnings))
	assert.Equal(t, 5, warnings[0].Row)
	assert.Equal(t, "new_side.csv", warnings[0].Path)
}

func TestParseLMSExportSkipsPointsPossible(t *testing.T) {
	content := "Student,ID,SIS Login ID,Section,Project 1: Intro (101)\n" +
		"    Points Possible,,,,10\n" +
		"\"Doe, Alice\",1,alice@x.edu,Section 1,8\n" +
		",,,,\n" +
		"Test Student,2,,Section 1,0\n"

	snap, warnings := parse(t, domain.SideOld, content)

	assert.Equal(t, []string{"alice@x.edu"}, snap.Keys())
	assert.Equal(t, []domain.WarningKind{domain.WarnIgnoredIdentity, domain.WarnBlankIdentity}, warningKinds(warnings))
	assert.Equal(t, 2, warnings[0].Row)
	assert.Equal(t, 5, warnings[1].Row)
}

func TestParseDropPolicy(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
		kinds    []domain.WarningKind
		messages []string
	}{
		{
			name: "excluded first occurrence stays excluded",
			content: "Full Name,Email,Status\n" +
				"Bob,bob@x.edu,Dropped\n" +
				"Bob,BOB@x.edu,Active\n",
			expected: []string{},
			kinds:    []domain.WarningKind{domain.WarnExcludedStatus, domain.WarnDuplicateIdentity},
			messages: []string{`status "Dropped" excluded`, "student excluded by an earlier row"},
		},
		{
			name: "later excluded row removes the student",
			content: "Full Name,Email,Status\n" +
				"Bob,bob@x.edu,Active\n" +
				"Bob,bob@x.edu,withdrawn\n",
			expected: []string{},
			kinds:    []domain.WarningKind{domain.WarnExcludedStatus},
		},
		{
			name: "status compared case-insensitively and trimmed",
			content: "Full Name,Email,Status\n" +
				"Bob,bob@x.edu, DROPPED \n" +
				"Eve,eve@x.edu,Active\n",
			expected: []string{"eve@x.edu"},
			kinds:    []domain.WarningKind{domain.WarnExcludedStatus},
		},
		{
			name: "any status column can exclude",
			content: "Full Name,Email,Status,CodePath Certificate Status\n" +
				"Bob,bob@x.edu,Active,Dropped\n",
			expected: []string{},
			kinds:    []domain.WarningKind{domain.WarnExcludedStatus},
		},
		{
			name: "duplicate keeps first row",
			content: "Full Name,Email,Status\n" +
				"Eve,eve@x.edu,Active\n" +
				"Eve Two, eve@x.edu ,Active\n",
			expected: []string{"eve@x.edu"},
			kinds:    []domain.WarningKind{domain.WarnDuplicateIdentity},
			messages: []string{"duplicate identity, first occurrence kept"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, warnings := parse(t, domain.SideNew, tt.content)
			assert.Equal(t, tt.expected, snap.Keys())
			assert.Equal(t, tt.kinds, warningKinds(warnings))
			if tt.messages != nil {
				msgs := make([]string, len(warnings))
				for i, w := range warnings {
					msgs[i] = w.Message
				}
				assert.Equal(t, tt.messages, msgs)
			}
		})
	}
}

func TestParseRaggedRows(t *testing.T) {
	content := "Full Name,Email,Project 1,Project 2\n" +
		"Alice,alice@x.edu,3\n" +
		"Bob,bob@x.edu,1,2,extra\n"

	snap, warnings := parse(t, domain.SideNew, content)

	require.Equal(t, 2, snap.Len())
	alice, _ := snap.Get("alice@x.edu")
	v, ok := alice.Value("Project 2")
	assert.True(t, ok)
	assert.Empty(t, v)
	assert.Equal(t, []domain.WarningKind{domain.WarnRaggedRow, domain.WarnRaggedRow}, warningKinds(warnings))
}

func TestParseSourceOverrides(t *testing.T) {
	content := "Name,Cohort\nAlice Doe,Fall\n"

	p := NewParser(testMapping(), nil)
	snap, err := p.Parse(context.Background(), domain.Source{
		Path:           "completers.csv",
		Side:           domain.SideNew,
		Content:        content,
		IdentityColumn: "Name",
		Anchors:        []string{"Name"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice doe"}, snap.Keys())
	rec, _ := snap.Get("alice doe")
	assert.Equal(t, "Alice Doe", rec.DisplayName())
	assert.Empty(t, rec.Email)
}

func TestParseStructuralErrors(t *testing.T) {
	p := NewParser(testMapping(), nil)
	ctx := context.Background()

	_, err := p.Parse(ctx, domain.Source{
		Path:    "banner.csv",
		Side:    domain.SideNew,
		Content: "Export banner\nName,Mail\n",
	})
	var hnf *apperrors.HeaderNotFoundError
	require.ErrorAs(t, err, &hnf)
	assert.Equal(t, "banner.csv", hnf.Path)
	assert.Equal(t, []string{"Full Name", "Email"}, hnf.Missing)
	assert.True(t, apperrors.IsStructural(err))

	_, err = p.Parse(ctx, domain.Source{
		Path:    "lms.csv",
		Side:    domain.SideOld,
		Content: "Student,SIS Login ID\n",
		Anchors: []string{"Student"},
	})
	require.NoError(t, err)

	_, err = p.Parse(ctx, domain.Source{
		Path:           "roster.csv",
		Side:           domain.SideOld,
		Content:        "Student,SIS User ID\nAlice,1\n",
		IdentityColumn: "SIS Login ID",
		Anchors:        []string{"Student"},
	})
	var icm *apperrors.IdentityColumnMissingError
	require.ErrorAs(t, err, &icm)
	assert.Equal(t, "roster.csv", icm.Path)
	assert.Equal(t, "SIS Login ID", icm.Column)
	assert.Equal(t, string(domain.SideOld), icm.Side)
	assert.Contains(t, err.Error(), `"SIS Login ID"`)
}

func TestParseBOMAndFingerprint(t *testing.T) {
	withBOM, _ := parse(t, domain.SideNew, "\ufeffFull Name,Email\nAlice,alice@x.edu\n")
	plain, _ := parse(t, domain.SideNew, "Full Name,Email\r\nAlice,alice@x.edu\r\n")

	assert.Equal(t, "Full Name", withBOM.Columns[0])
	assert.Equal(t, 1, withBOM.Len())

	again, _ := parse(t, domain.SideNew, "Full Name,Email\nAlice,alice@x.edu\n")
	assert.Equal(t, plain.Fingerprint, again.Fingerprint, "line endings do not change the fingerprint")

	changed, _ := parse(t, domain.SideNew, "Full Name,Email\nAlice,alice@y.edu\n")
	assert.NotEqual(t, plain.Fingerprint, changed.Fingerprint)
}

func TestParseLogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	p := NewParser(testMapping(), logger)
	_, err := p.Parse(context.Background(), domain.Source{
		Path:    "new.csv",
		Side:    domain.SideNew,
		Content: "Full Name,Email,Status\nBob,bob@x.edu,Dropped\n",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), "excluded-status")
	assert.Contains(t, buf.String(), `"msg":"Snapshot parsed"`)
}

func TestIdentityKey(t *testing.T) {
	tests := map[string]string{
		"  Alice@X.edu ":   "alice@x.edu",
		"Doe,   Alice":     "doe, alice",
		"STRASSE":          "strasse",
		"\uff21lice@x.edu": "alice@x.edu",
		"ﬁona@x.edu":       "fiona@x.edu",
		"":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, IdentityKey(in), in)
	}
}
