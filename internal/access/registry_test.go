package access

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cgdb-project/cgdb/internal/models"
)

func TestRegisterRejectsDuplicateKinds(t *testing.T) {
	def := &Definition{
		Kind:       "registry_test_kind",
		Model:      &models.Project{},
		Descriptor: None(),
	}
	require.NoError(t, Register(def))
	t.Cleanup(func() { removeKind(def.Kind) })

	require.ErrorIs(t, Register(def), errDuplicateKind)
}

func TestRegisterRejectsStructurallyIncompleteDefinitions(t *testing.T) {
	require.Error(t, Register(nil))
	require.Error(t, Register(&Definition{Kind: "", Model: &models.Project{}, Descriptor: None()}))
	require.Error(t, Register(&Definition{Kind: "no_model", Descriptor: None()}))

	// Direct without an accessor.
	require.Error(t, Register(&Definition{
		Kind:       "bad_direct",
		Model:      &models.StudyArea{},
		Descriptor: Direct("project_id", nil),
	}))

	// Nested without any hops.
	require.Error(t, Register(&Definition{
		Kind:       "bad_nested",
		Model:      &models.Site{},
		Descriptor: Nested("project_id", studyAreaProject),
	}))

	// Literature exemption missing its accessor.
	require.Error(t, Register(&Definition{
		Kind:       "bad_literature",
		Model:      &models.Location{},
		Descriptor: Direct("project_id", locationProject),
		Literature: &LiteratureExemption{Column: "data_source"},
	}))
}

func TestValidateAcceptsBuiltinKinds(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Validate(db))
}

func TestValidateRejectsMissingDirectColumn(t *testing.T) {
	db := setupTestDB(t)

	def := &Definition{
		Kind:  "misconfigured_direct",
		Model: &models.StudyArea{},
		Descriptor: Direct("no_such_column", func(rec any) *string {
			return nil
		}),
	}
	require.NoError(t, Register(def))
	t.Cleanup(func() { removeKind(def.Kind) })

	require.Error(t, Validate(db))
}

func TestValidateRejectsMissingHopTarget(t *testing.T) {
	db := setupTestDB(t)

	def := &Definition{
		Kind:  "misconfigured_nested",
		Model: &models.Site{},
		Descriptor: Nested("no_such_column", studyAreaProject, Hop{
			Name:   "study_area",
			Column: "study_area_id",
			Table:  "study_areas",
			Model:  &models.StudyArea{},
			Step: func(rec any) (any, bool) {
				return nil, false
			},
		}),
	}
	require.NoError(t, Register(def))
	t.Cleanup(func() { removeKind(def.Kind) })

	require.Error(t, Validate(db))
}

func TestCandidateProjectsHybridDeduplicates(t *testing.T) {
	project := "p-1"
	location := &models.Location{ProjectID: &project}
	sample := &models.Sample{ProjectID: &project, Location: location}

	def, ok := Lookup(models.KindSample)
	require.True(t, ok)

	// Direct and nested agree; one candidate, not two.
	require.Equal(t, []string{project}, def.Descriptor.CandidateProjects(sample))

	// Disagreeing paths yield both candidates, direct first.
	other := "p-2"
	sample.Location = &models.Location{ProjectID: &other}
	require.Equal(t, []string{project, other}, def.Descriptor.CandidateProjects(sample))

	// Neither path resolvable.
	require.Empty(t, def.Descriptor.CandidateProjects(&models.Sample{}))
}
