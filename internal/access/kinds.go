package access

import "github.com/cgdb-project/cgdb/internal/models"

// Built-in record kinds and their ownership topologies. Descriptors are
// static configuration; Validate checks them against the schema when
// the server boots.
func init() {
	defs := []*Definition{
		{
			Kind:  models.KindProject,
			Model: &models.Project{},
			Descriptor: Direct("id", func(rec any) *string {
				p := rec.(*models.Project)
				if p.ID == "" {
					return nil
				}
				return &p.ID
			}),
		},
		{
			Kind:       models.KindStudyArea,
			Model:      &models.StudyArea{},
			Descriptor: Direct("project_id", studyAreaProject),
		},
		{
			Kind:  models.KindCampaign,
			Model: &models.Campaign{},
			Descriptor: Direct("project_id", func(rec any) *string {
				c := rec.(*models.Campaign)
				if c.ProjectID == "" {
					return nil
				}
				return &c.ProjectID
			}),
		},
		{
			Kind:  models.KindSite,
			Model: &models.Site{},
			Descriptor: Nested("project_id", studyAreaProject, Hop{
				Name:   "study_area",
				Column: "study_area_id",
				Table:  "study_areas",
				Model:  &models.StudyArea{},
				Step: func(rec any) (any, bool) {
					s := rec.(*models.Site)
					if s.StudyArea == nil {
						return nil, false
					}
					return s.StudyArea, true
				},
			}),
		},
		{
			Kind:  models.KindTransect,
			Model: &models.Transect{},
			Descriptor: Nested("project_id", studyAreaProject, Hop{
				Name:   "study_area",
				Column: "study_area_id",
				Table:  "study_areas",
				Model:  &models.StudyArea{},
				Step: func(rec any) (any, bool) {
					t := rec.(*models.Transect)
					if t.StudyArea == nil {
						return nil, false
					}
					return t.StudyArea, true
				},
			}),
		},
		{
			Kind:  models.KindLocation,
			Model: &models.Location{},
			Descriptor: Direct("project_id", func(rec any) *string {
				return rec.(*models.Location).ProjectID
			}),
			Literature: &LiteratureExemption{
				Column: "data_source",
				Get: func(rec any) string {
					return rec.(*models.Location).DataSource
				},
			},
		},
		{
			Kind:  models.KindLayer,
			Model: &models.Layer{},
			Descriptor: Nested("project_id", locationProject, Hop{
				Name:   "location",
				Column: "location_id",
				Table:  "locations",
				Model:  &models.Location{},
				Step: func(rec any) (any, bool) {
					l := rec.(*models.Layer)
					if l.Location == nil {
						return nil, false
					}
					return l.Location, true
				},
			}),
		},
		{
			Kind:  models.KindSample,
			Model: &models.Sample{},
			Descriptor: Hybrid(
				"project_id",
				func(rec any) *string {
					return rec.(*models.Sample).ProjectID
				},
				"project_id",
				locationProject,
				Hop{
					Name:   "location",
					Column: "location_id",
					Table:  "locations",
					Model:  &models.Location{},
					Step: func(rec any) (any, bool) {
						s := rec.(*models.Sample)
						if s.Location == nil {
							return nil, false
						}
						return s.Location, true
					},
				},
			),
		},
		{
			Kind:       models.KindReference,
			Model:      &models.Reference{},
			Descriptor: None(),
		},
		{
			Kind:  models.KindGrainSize,
			Model: &models.GrainSizeMeasurement{},
			Descriptor: Nested("project_id", sampleProject, Hop{
				Name:   "sample",
				Column: "sample_id",
				Table:  "samples",
				Model:  &models.Sample{},
				Step: func(rec any) (any, bool) {
					g := rec.(*models.GrainSizeMeasurement)
					if g.Sample == nil {
						return nil, false
					}
					return g.Sample, true
				},
			}),
		},
	}

	for _, def := range defs {
		MustRegister(def)
	}
}

func studyAreaProject(rec any) *string {
	sa := rec.(*models.StudyArea)
	if sa.ProjectID == "" {
		return nil
	}
	return &sa.ProjectID
}

func locationProject(rec any) *string {
	return rec.(*models.Location).ProjectID
}

func sampleProject(rec any) *string {
	return rec.(*models.Sample).ProjectID
}
